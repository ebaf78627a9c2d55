package report

import (
	"context"
	"iter"
	"sort"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SurveySummary returns the joined survey view. Missing stats rows show up as
// zero votes; a missing survey propagates the repository's not-found error.
func (s *Service) SurveySummary(ctx context.Context, surveyID int64) (*SurveySummary, error) {
	sum, err := s.repo.Summary(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	sum.DaysActive = int(s.now().Sub(sum.CreatedAt).Hours() / 24)
	return sum, nil
}

// VoteBreakdown returns a restartable sequence of per-option tallies, ordered
// by question text, then rank. Within a question options are ranked by vote
// count descending; ties keep their input order and still consume an ordinal
// each. Questions without votes report 0.00 for every option.
func (s *Service) VoteBreakdown(ctx context.Context, surveyID int64) (iter.Seq[OptionTally], error) {
	rows, err := s.repo.BreakdownRows(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return func(yield func(OptionTally) bool) {
		for start := 0; start < len(rows); {
			end := start
			for end < len(rows) && rows[end].QuestionID == rows[start].QuestionID {
				end++
			}
			if !yieldQuestion(rows[start:end], yield) {
				return
			}
			start = end
		}
	}, nil
}

func yieldQuestion(group []BreakdownRow, yield func(OptionTally) bool) bool {
	var total int64
	for _, r := range group {
		total += r.Votes
	}

	ordered := make([]BreakdownRow, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Votes > ordered[j].Votes
	})

	for i, r := range ordered {
		pct := 0.0
		if total > 0 {
			pct = float64(r.Votes) * 100.0 / float64(total)
		}
		t := OptionTally{
			QuestionID:   r.QuestionID,
			QuestionText: r.QuestionText,
			OptionID:     r.OptionID,
			OptionText:   r.OptionText,
			Votes:        r.Votes,
			Percentage:   pct,
			Rank:         i + 1,
		}
		if !yield(t) {
			return false
		}
	}
	return true
}

// Dashboard returns system-wide aggregates; an empty store yields an empty
// view rather than an error.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.repo.Dashboard(ctx)
}
