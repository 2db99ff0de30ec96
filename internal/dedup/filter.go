package dedup

import (
	"context"
	"strings"

	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/questiongen"
)

// Observer is told why each question was dropped: "duplicate" or
// "malformed".
type Observer interface {
	Dropped(reason string)
}

// Filter removes questions a user has already seen since their last
// Clear. Malformed questions are dropped too.
type Filter struct {
	store      Store
	validators []questiongen.Validator
	log        *logging.Logger
	obs        Observer
}

// NewFilter wraps store. log and obs may be nil.
func NewFilter(store Store, log *logging.Logger, obs Observer) *Filter {
	return &Filter{
		store:      store,
		validators: []questiongen.Validator{&questiongen.StructuralValidator{}, &questiongen.AnswerValidator{}},
		log:        logging.OrNop(log).With("component", "dedup"),
		obs:        obs,
	}
}

// Filter returns the questions of qs, in order, whose fingerprint the
// user has not been served, and records them as served. A store error
// keeps the question: a repeat is better than an empty quiz.
func (f *Filter) Filter(ctx context.Context, qs []questiongen.Question, userID int64) []questiongen.Question {
	out := make([]questiongen.Question, 0, len(qs))
	for i := range qs {
		q := qs[i]
		if strings.TrimSpace(q.Text) == "" {
			f.drop("malformed", userID, "empty question text")
			continue
		}
		if verr := f.validate(&q); verr != nil {
			f.drop("malformed", userID, verr.Error())
			continue
		}
		added, err := f.store.Add(ctx, userID, Fingerprint(q.Text))
		if err != nil {
			f.log.Warn("fingerprint store unavailable, keeping question", "user_id", userID, "error", err)
			out = append(out, q)
			continue
		}
		if !added {
			f.drop("duplicate", userID, "")
			continue
		}
		out = append(out, q)
	}
	return out
}

// Clear forgets everything the user has been served.
func (f *Filter) Clear(ctx context.Context, userID int64) error {
	return f.store.Clear(ctx, userID)
}

func (f *Filter) validate(q *questiongen.Question) *questiongen.ValidationError {
	for _, v := range f.validators {
		if verr := v.Validate(q); verr != nil {
			return verr
		}
	}
	return nil
}

func (f *Filter) drop(reason string, userID int64, detail string) {
	if reason == "malformed" {
		f.log.Warn("dropping malformed question", "user_id", userID, "detail", detail)
	}
	if f.obs != nil {
		f.obs.Dropped(reason)
	}
}
