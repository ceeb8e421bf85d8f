package views

import (
	"fmt"
	"strings"

	"forensdesk/internal/application/commands"
	"forensdesk/internal/domain"
)

// NodeKind classifies a browser node
type NodeKind int

const (
	NodeImage NodeKind = iota
	NodePartition
	NodeDirectory
	NodeFile
)

// Node is one row of the browser tree. Directory children are loaded on
// first expansion.
type Node struct {
	Kind     NodeKind
	Name     string
	Inode    uint64
	Offset   int64 // Start sector of the file system the node lives in
	Size     string
	Modified string
	Children []*Node
	Parent   *Node
	Expanded bool
	Loaded   bool
}

// Flatten returns the visible nodes in display order
func (n *Node) Flatten() []*Node {
	var result []*Node
	n.flatten(&result)
	return result
}

func (n *Node) flatten(result *[]*Node) {
	*result = append(*result, n)
	if n.Expanded {
		for _, child := range n.Children {
			child.flatten(result)
		}
	}
}

// Depth returns the distance from the root
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Expandable reports whether the node can hold children
func (n *Node) Expandable() bool {
	return n.Kind != NodeFile
}

// DirInode is the inode to list for this node. Partitions list the
// root directory of their file system.
func (n *Node) DirInode() *uint64 {
	if n.Kind != NodeDirectory {
		return nil
	}
	inode := n.Inode
	return &inode
}

// Reference renders the node as arguments for forensdesk-cli cat
func (n *Node) Reference() string {
	switch n.Kind {
	case NodeFile, NodeDirectory:
		if n.Offset == 0 {
			return fmt.Sprintf("%d", n.Inode)
		}
		return fmt.Sprintf("%d --offset %d", n.Inode, n.Offset)
	case NodePartition:
		return fmt.Sprintf("--offset %d", n.Offset)
	default:
		return n.Name
	}
}

// IsSystem reports NTFS metafiles and Sleuth Kit virtual entries such as
// $OrphanFiles
func (n *Node) IsSystem() bool {
	return strings.HasPrefix(n.Name, "$")
}

// SetPartitions replaces the children of an image node
func (n *Node) SetPartitions(parts []domain.Partition) {
	n.Children = make([]*Node, 0, len(parts))
	for _, p := range parts {
		n.Children = append(n.Children, &Node{
			Kind:   NodePartition,
			Name:   fmt.Sprintf("#%d %s (start %d, %d sectors)", p.Index, p.Label, p.StartOffset, p.Size),
			Offset: p.StartOffset,
			Parent: n,
		})
	}
	n.Loaded = true
}

// SetEntries replaces the children of a partition or directory node.
// The self and parent links of a listing are dropped.
func (n *Node) SetEntries(entries []domain.DirectoryEntry) {
	n.Children = make([]*Node, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		kind := NodeFile
		if e.IsDirectory {
			kind = NodeDirectory
		}
		n.Children = append(n.Children, &Node{
			Kind:     kind,
			Name:     e.Name,
			Inode:    e.InodeNumber,
			Offset:   n.Offset,
			Size:     e.Size,
			Modified: e.Modified,
			Parent:   n,
		})
	}
	n.Loaded = true
}

// newImageRoot builds the root node from a partition listing
func newImageRoot(name string, res *commands.PartitionsResult) *Node {
	root := &Node{Kind: NodeImage, Name: name, Expanded: true}
	root.SetPartitions(res.Partitions)
	return root
}
