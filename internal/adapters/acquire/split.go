package acquire

import (
	"context"
	"io"
	"slices"
)

// splitReader fans r out to n pipes. A consumer that stops early closes its
// pipe and is skipped from then on; the others still see every byte.
func splitReader(ctx context.Context, r io.Reader, n int) []io.ReadCloser {
	pws := make([]*io.PipeWriter, n)
	readers := make([]io.ReadCloser, n)

	for i := 0; i < n; i++ {
		pr, pw := io.Pipe()
		pws[i] = pw
		readers[i] = pr
	}

	go func() {
		var readErr error
		defer func() {
			for _, pw := range pws {
				pw.CloseWithError(readErr)
			}
		}()

		closedReaders := make([]int, 0)
		buf := make([]byte, 1024*32)
		for {
			if err := ctx.Err(); err != nil {
				readErr = err
				return
			}
			n, err := r.Read(buf)
			if n > 0 {
				for i := 0; i < len(pws); i++ {
					if slices.Contains(closedReaders, i) {
						continue
					}

					_, wrErr := pws[i].Write(buf[:n])
					if wrErr != nil {
						closedReaders = append(closedReaders, i)
					}
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr = err
				}
				return
			}
		}
	}()

	return readers
}
