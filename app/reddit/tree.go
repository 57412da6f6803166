package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Comment is one flattened reply: author, body and source-assigned score.
type Comment struct {
	Author string
	Body   string
	Score  int
}

// Node is a parsed comment-tree node: either a comment or a listing of
// further nodes.
type Node interface {
	node()
}

type CommentNode struct {
	Author  string
	Body    string
	Score   int
	Replies []Node
}

type ListingNode struct {
	Children []Node
}

func (*CommentNode) node() {}
func (*ListingNode) node() {}

// Tombstone markers used by the source for deleted or removed content.
const (
	deletedBody   = "[deleted]"
	removedBody   = "[removed]"
	deletedAuthor = "[deleted]"
)

type rawComment struct {
	Author  string          `json:"author"`
	Body    string          `json:"body"`
	Score   int             `json:"score"`
	Replies json.RawMessage `json:"replies"`
}

// DecodeNode parses one thing envelope into the comment-tree union.
// Unknown kinds (e.g. "more" stubs) decode to nil and are skipped by
// traversal. The two "no replies" encodings the source uses — an absent
// field and an empty-string or boolean sentinel — both normalize to an
// empty reply list here, at the parsing boundary.
func DecodeNode(raw json.RawMessage) (Node, error) {
	var thing thingEnvelope
	if err := json.Unmarshal(raw, &thing); err != nil {
		return nil, fmt.Errorf("failed to decode comment thing: %w", err)
	}

	switch thing.Kind {
	case kindComment:
		var c rawComment
		if err := json.Unmarshal(thing.Data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode comment data: %w", err)
		}

		node := &CommentNode{Author: c.Author, Body: c.Body, Score: c.Score}

		if hasNestedReplies(c.Replies) {
			replies, err := DecodeNode(c.Replies)
			if err != nil {
				return nil, err
			}
			if listing, ok := replies.(*ListingNode); ok {
				node.Replies = listing.Children
			}
		}

		return node, nil

	case kindListing:
		var data struct {
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(thing.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode listing data: %w", err)
		}

		node := &ListingNode{}
		for _, child := range data.Children {
			decoded, err := DecodeNode(child)
			if err != nil {
				return nil, err
			}
			if decoded != nil {
				node.Children = append(node.Children, decoded)
			}
		}

		return node, nil

	default:
		return nil, nil
	}
}

func hasNestedReplies(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	// `""`, `false` and `null` all mean "no more replies"
	return trimmed[0] == '{'
}

// Flatten walks the tree depth-first, parent before replies, and returns one
// Comment per visible comment node. Tombstoned nodes are excluded from the
// output but their subtrees are still traversed: a deleted parent can have
// visible children.
func Flatten(root Node) []Comment {
	var comments []Comment

	var walk func(Node)
	walk = func(n Node) {
		switch node := n.(type) {
		case *CommentNode:
			if !isTombstoned(node) {
				comments = append(comments, Comment{
					Author: node.Author,
					Body:   node.Body,
					Score:  node.Score,
				})
			}
			for _, reply := range node.Replies {
				walk(reply)
			}
		case *ListingNode:
			for _, child := range node.Children {
				walk(child)
			}
		}
	}

	if root != nil {
		walk(root)
	}

	return comments
}

func isTombstoned(c *CommentNode) bool {
	if c.Body == deletedBody || c.Body == removedBody {
		return true
	}
	return c.Author == deletedAuthor
}
