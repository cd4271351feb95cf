package service

import (
	"sort"

	"github.com/RottenTrenches/Rotten-Trenches/internal/model"
)

// replyDisposition classifies how a non-root comment was placed during
// thread assembly, so callers (and tests) can tell "threaded" apart from
// "dropped because the parent is missing".
type replyDisposition int

const (
	replyAttached replyDisposition = iota
	// replyOrphaned: the referenced parent is not in the fetch window
	// (deleted, paginated out, or a self/cyclic reference). Orphans are
	// dropped from the rendered tree entirely.
	replyOrphaned
)

// ThreadBuildReport summarizes one Build call for observability and tests.
type ThreadBuildReport struct {
	Roots    int
	Replies  int
	Orphaned int
}

// ThreadService turns the flat newest-first comment list into the threaded
// display tree: roots in fetch order, each with its replies sorted oldest
// first. Build is pure: the same inputs always yield the same tree, and no
// state is kept between calls.
type ThreadService struct{}

func NewThreadService() *ThreadService {
	return &ThreadService{}
}

type threadNode struct {
	comment model.Comment
	profile *model.UserProfile
	replies []*threadNode
}

// Build assembles comment threads. comments must be in the fetch order
// (created_at descending); profiles is the bulk lookup keyed by wallet
// address, with absent keys meaning "no profile".
//
// A comment whose parent_comment_id does not resolve inside the input set
// is dropped from the output — it appears neither as a root nor as a reply.
// A comment naming itself (or any cycle back to itself) as parent is
// treated the same way.
func (s *ThreadService) Build(comments []model.Comment, profiles map[string]*model.UserProfile) ([]model.CommentThread, ThreadBuildReport) {
	var report ThreadBuildReport

	nodes := make(map[string]*threadNode, len(comments))
	for i := range comments {
		c := comments[i]
		nodes[c.ID] = &threadNode{
			comment: c,
			profile: profiles[c.WalletAddress],
		}
	}

	var roots []*threadNode
	for i := range comments {
		c := comments[i]
		if c.ParentCommentID == nil {
			roots = append(roots, nodes[c.ID])
			continue
		}
		switch classifyReply(c, nodes) {
		case replyAttached:
			parent := nodes[*c.ParentCommentID]
			parent.replies = append(parent.replies, nodes[c.ID])
			report.Replies++
		case replyOrphaned:
			report.Orphaned++
		}
	}

	// Replies read top-down oldest first once a thread is expanded, while
	// the root list itself stays newest first.
	for _, root := range roots {
		sort.SliceStable(root.replies, func(a, b int) bool {
			return root.replies[a].comment.CreatedAt.Before(root.replies[b].comment.CreatedAt)
		})
	}

	out := make([]model.CommentThread, 0, len(roots))
	for _, root := range roots {
		out = append(out, materialize(root))
	}
	report.Roots = len(out)

	return out, report
}

// classifyReply resolves a reply's parent reference. Walks the parent chain
// to reject cycles: any chain that revisits a comment (including a comment
// naming itself) counts as parent-not-found.
func classifyReply(c model.Comment, nodes map[string]*threadNode) replyDisposition {
	if _, ok := nodes[*c.ParentCommentID]; !ok {
		return replyOrphaned
	}

	seen := map[string]bool{c.ID: true}
	cur := nodes[*c.ParentCommentID]
	for cur != nil {
		if seen[cur.comment.ID] {
			return replyOrphaned
		}
		seen[cur.comment.ID] = true
		if cur.comment.ParentCommentID == nil {
			break
		}
		cur = nodes[*cur.comment.ParentCommentID]
	}
	return replyAttached
}

func materialize(n *threadNode) model.CommentThread {
	t := model.CommentThread{
		Comment: n.comment,
		Profile: n.profile,
		Replies: []model.CommentThread{},
	}
	for _, r := range n.replies {
		t.Replies = append(t.Replies, materialize(r))
	}
	return t
}
