package prediction

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"anoa.com/nawhoknow/internal/entity"
	"github.com/google/uuid"
)

const (
	SortTrending = "trending"
	SortLatest   = "latest"
	SortEnding   = "ending"

	TabActive   = "active"
	TabResolved = "resolved"
)

// filterByTab picks the predictions a tab shows. For members the active tab
// is approved predictions still open for voting; admins moderate from the
// active tab, so it keeps every status. The resolved tab is the same for
// both. An empty tab shows everything the viewer may see.
func filterByTab(predictions []*entity.Prediction, tab string, adminView bool, now time.Time) []*entity.Prediction {
	if tab == "" {
		return predictions
	}

	out := make([]*entity.Prediction, 0, len(predictions))
	for _, p := range predictions {
		switch tab {
		case TabActive:
			if adminView {
				out = append(out, p)
			} else if p.Status == entity.StatusApproved && !p.IsExpired(now) {
				out = append(out, p)
			}
		case TabResolved:
			if p.Status == entity.StatusResolved {
				out = append(out, p)
			}
		}
	}
	return out
}

func filterByCategory(predictions []*entity.Prediction, category string) []*entity.Prediction {
	if category == "" {
		return predictions
	}

	out := make([]*entity.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if strings.EqualFold(p.Category.Slug, category) || strings.EqualFold(p.Category.Name, category) {
			out = append(out, p)
		}
	}
	return out
}

// memberPriority surfaces predictions the viewer can still act on:
// not-yet-voted first, then voted-but-open, resolved last.
func memberPriority(p *entity.Prediction, hasVoted bool) int {
	switch {
	case p.Status == entity.StatusResolved:
		return 2
	case hasVoted:
		return 1
	default:
		return 0
	}
}

// adminPriority orders the moderation queue by how urgently each status
// needs attention.
func adminPriority(p *entity.Prediction) int {
	switch p.Status {
	case entity.StatusPending:
		return 0
	case entity.StatusApproved:
		return 1
	case entity.StatusResolved:
		return 2
	default: // rejected
		return 3
	}
}

// sortFeed orders predictions by priority band, then breaks ties with the
// requested sort. The sort is stable so equal rows keep repository order.
func sortFeed(predictions []*entity.Prediction, userVotes map[uuid.UUID]string, sortKey string, adminView bool) {
	priority := func(p *entity.Prediction) int {
		if adminView {
			return adminPriority(p)
		}
		_, hasVoted := userVotes[p.ID]
		return memberPriority(p, hasVoted)
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		a, b := predictions[i], predictions[j]

		pa, pb := priority(a), priority(b)
		if pa != pb {
			return pa < pb
		}

		switch sortKey {
		case SortLatest:
			return a.CreatedAt.After(b.CreatedAt)
		case SortEnding:
			return a.ExpiresAt.Before(b.ExpiresAt)
		default: // trending
			return a.Upvotes > b.Upvotes
		}
	})
}

func paginate(predictions []*entity.Prediction, page, limit int) []*entity.Prediction {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	start := (page - 1) * limit
	if start >= len(predictions) {
		return []*entity.Prediction{}
	}

	end := start + limit
	if end > len(predictions) {
		end = len(predictions)
	}
	return predictions[start:end]
}

// timeLeftString renders the countdown shown on every prediction card.
func timeLeftString(p *entity.Prediction, now time.Time) string {
	if p.IsResolved() {
		return "Resolved"
	}

	remaining := p.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}

	hrs := int(remaining.Hours())
	mins := int(remaining.Minutes()) % 60
	secs := int(remaining.Seconds()) % 60
	return fmt.Sprintf("Expires in: %dh %dm %ds", hrs, mins, secs)
}
