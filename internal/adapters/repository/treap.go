package repository

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/okian/mercwork/internal/domain/model"
	"github.com/okian/mercwork/pkg/metrics"
)

// Treap-based, in-memory prestige ranking.
//
// Ordering: score DESC, then requester id ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Ties share a rank and the next rank skips ("1,1,3").

// Entry represents a leaderboard row.
type Entry struct {
	Rank        int    `json:"rank"`
	RequesterID string `json:"requester_id"`
	Score       int    `json:"score"`
	Title       string `json:"title"`
}

// Ranking provides read/write access to the prestige ordering.
type Ranking interface {
	// Set records requester's current score, replacing any previous one.
	Set(ctx context.Context, requesterID string, score int)
	// Rank returns ErrNotFound if the requester is unknown.
	Rank(ctx context.Context, requesterID string) (Entry, error)
	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Count(ctx context.Context) int
}

type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int, prio uint64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: prio, size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes hold a score strictly greater than score.
func countAbove(n *node, score int) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{RequesterID: n.id, Score: n.score, Title: model.TitleFor(n.score)})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapRanking is the in-memory Ranking.
type TreapRanking struct {
	mu      sync.RWMutex
	root    *node
	byID    map[string]int
	prioSrc func() uint64
}

// NewTreapRanking constructs an empty ranking.
func NewTreapRanking(opts ...Option) *TreapRanking {
	r := &TreapRanking{
		byID:    make(map[string]int),
		prioSrc: rand.Uint64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set implements Ranking in O(log n) expected time.
func (r *TreapRanking) Set(ctx context.Context, requesterID string, score int) {
	r.mu.Lock()
	if old, ok := r.byID[requesterID]; ok {
		if old == score {
			r.mu.Unlock()
			return
		}
		r.root = deleteNode(r.root, requesterID, old)
	}
	r.byID[requesterID] = score
	r.root = insert(r.root, requesterID, score, r.prioSrc())
	count := len(r.byID)
	r.mu.Unlock()

	metrics.UpdateRankedProfiles(count)
}

// Rank implements Ranking in O(log n) expected time.
func (r *TreapRanking) Rank(ctx context.Context, requesterID string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	score, ok := r.byID[requesterID]
	if !ok {
		metrics.RecordErrorByComponent("ranking", "not_found")
		return Entry{}, ErrNotFound
	}
	return Entry{
		Rank:        countAbove(r.root, score) + 1,
		RequesterID: requesterID,
		Score:       score,
		Title:       model.TitleFor(score),
	}, nil
}

// TopN implements Ranking.
func (r *TreapRanking) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("ranking", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(r.byID)))
	collectTopN(r.root, n, &out)
	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out, nil
}

// Count implements Ranking.
func (r *TreapRanking) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
