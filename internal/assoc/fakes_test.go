package assoc

import (
	"context"
	"sort"
	"strings"

	"number-heroes/internal/db"
)

// fakeRepo is an in-memory Repository for generator and scanner tests.
type fakeRepo struct {
	rows     []db.NumberAssociation
	nextID   uint
	saveErrs []error
}

func newFakeRepo(rows ...db.NumberAssociation) *fakeRepo {
	repo := &fakeRepo{nextID: 1}
	for _, row := range rows {
		if row.ID == 0 {
			row.ID = repo.nextID
		}
		if row.ID >= repo.nextID {
			repo.nextID = row.ID + 1
		}
		repo.rows = append(repo.rows, row)
	}
	return repo
}

func (f *fakeRepo) All(ctx context.Context) ([]db.NumberAssociation, error) {
	return append([]db.NumberAssociation(nil), f.rows...), nil
}

func (f *fakeRepo) Primary(ctx context.Context) ([]db.NumberAssociation, error) {
	var out []db.NumberAssociation
	for _, row := range f.rows {
		if row.IsPrimary {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeRepo) PrimaryForNumber(ctx context.Context, number int) (*db.NumberAssociation, error) {
	for i := range f.rows {
		if f.rows[i].Number == number && f.rows[i].IsPrimary {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) BestForNumber(ctx context.Context, number int) (*db.NumberAssociation, error) {
	var best *db.NumberAssociation
	for i := range f.rows {
		row := f.rows[i]
		if row.Number != number {
			continue
		}
		if best == nil || row.Rating > best.Rating || (row.Rating == best.Rating && row.ID < best.ID) {
			copied := row
			best = &copied
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func (f *fakeRepo) PrimarySample(ctx context.Context, limit int) ([]db.NumberAssociation, error) {
	out, _ := f.Primary(ctx)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) SavePrimary(ctx context.Context, assoc *db.NumberAssociation) error {
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		if err != nil {
			return err
		}
	}
	for i := range f.rows {
		if f.rows[i].Number == assoc.Number {
			f.rows[i].IsPrimary = false
		}
	}
	assoc.ID = f.nextID
	f.nextID++
	assoc.IsPrimary = true
	f.rows = append(f.rows, *assoc)
	return nil
}

func (f *fakeRepo) UpdateRating(ctx context.Context, id uint, rating float64) (*db.NumberAssociation, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Rating = nextRating(f.rows[i].Rating, f.rows[i].TotalVotes, rating)
			f.rows[i].TotalVotes++
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) MissingNumbers(ctx context.Context, from, to int) ([]int, error) {
	have := make(map[int]struct{})
	for _, row := range f.rows {
		if row.IsPrimary {
			have[row.Number] = struct{}{}
		}
	}
	var out []int
	for n := from; n <= to; n++ {
		if _, ok := have[n]; !ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// fakeCompleter replays queued responses and records the prompts it saw.
type fakeCompleter struct {
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.prompts = append(f.prompts, user)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeCompleter) lastPrompt() string {
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func promptForbids(prompt, word string) bool {
	return strings.Contains(strings.ToLower(prompt), strings.ToLower(word))
}
