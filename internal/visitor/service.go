// Package visitor implements the record lifecycle: check-in, checkout,
// edit, delete and the to-meet suggestion list.
package visitor

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"visitor-management-backend/internal/model"
	"visitor-management-backend/internal/photo"
	"visitor-management-backend/internal/query"
	"visitor-management-backend/internal/store"
)

// Notifier receives the id of every freshly checked-in visitor. The push
// worker pool satisfies this; tests substitute their own.
type Notifier interface {
	Dispatch(visitorID string)
}

// Service coordinates all mutations of the visitor collection. A single
// mutex serializes every load-modify-save cycle so two concurrent requests
// cannot overwrite each other's writes.
type Service struct {
	store    store.Store
	photo    photo.Options
	notifier Notifier
	now      func() time.Time

	mu sync.Mutex
}

// NewService creates a lifecycle service. notifier may be nil.
func NewService(s store.Store, photoOpts photo.Options, notifier Notifier) *Service {
	return &Service{
		store:    s,
		photo:    photoOpts,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CheckInInput is the check-in form payload.
type CheckInInput struct {
	CardNo       string `json:"cardNo"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	CompanyName  string `json:"companyName"`
	ToMeet       string `json:"toMeet"`
	Purpose      string `json:"purpose"`
	PhotoDataURL string `json:"photoDataUrl"`
}

// CheckIn validates the form, downscales an oversized photo, assigns a
// fresh id and check-in time and appends the record. The visitor's toMeet
// value is added to the suggestion list when unseen.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (model.Visitor, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"cardNo", in.CardNo},
		{"name", in.Name},
		{"companyName", in.CompanyName},
		{"toMeet", in.ToMeet},
		{"purpose", in.Purpose},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return model.Visitor{}, &ValidationError{Missing: missing}
	}

	photoData := in.PhotoDataURL
	if photoData != "" && s.photo.NeedsDownscale(photoData) {
		reduced, err := photo.Downscale(photoData, s.photo)
		if err != nil {
			return model.Visitor{}, &PhotoProcessingError{Err: err}
		}
		photoData = reduced
	}

	now := s.now().UTC()
	v := model.Visitor{
		ID:           newID(now),
		CardNo:       in.CardNo,
		Name:         in.Name,
		Phone:        in.Phone,
		CompanyName:  in.CompanyName,
		ToMeet:       in.ToMeet,
		Purpose:      in.Purpose,
		PhotoDataURL: photoData,
		InTime:       now.Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return model.Visitor{}, err
	}
	if err := s.store.SaveVisitors(ctx, append(visitors, v)); err != nil {
		return model.Visitor{}, err
	}

	if err := s.rememberToMeet(ctx, in.ToMeet); err != nil {
		// The visitor is already saved; a failed suggestion update is not
		// worth failing the check-in over.
		log.Printf("visitor: failed to update to-meet options: %v", err)
	}

	if s.notifier != nil {
		s.notifier.Dispatch(v.ID)
	}
	return v, nil
}

// Checkout stamps the checkout time. It is idempotent: an already
// checked-out record keeps its original time. An unknown id is a silent
// no-op; the UI only offers checkout on records it knows are present.
func (s *Service) Checkout(ctx context.Context, id string) (model.Visitor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return model.Visitor{}, false, err
	}

	for i, v := range visitors {
		if v.ID != id {
			continue
		}
		if v.OutTime != "" {
			return v, true, nil
		}
		visitors[i].OutTime = s.now().UTC().Format(time.RFC3339)
		if err := s.store.SaveVisitors(ctx, visitors); err != nil {
			return model.Visitor{}, false, err
		}
		return visitors[i], true, nil
	}
	return model.Visitor{}, false, nil
}

// UpdateInput carries the editable fields. Nil pointers are left untouched;
// id, check-in time, card number and photo are never editable.
type UpdateInput struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"companyName"`
	ToMeet      *string `json:"toMeet"`
	Purpose     *string `json:"purpose"`
}

// Update overwrites the provided fields. An unknown id is a silent no-op.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (model.Visitor, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return model.Visitor{}, false, err
	}

	for i := range visitors {
		if visitors[i].ID != id {
			continue
		}
		if in.Name != nil {
			visitors[i].Name = *in.Name
		}
		if in.Phone != nil {
			visitors[i].Phone = *in.Phone
		}
		if in.CompanyName != nil {
			visitors[i].CompanyName = *in.CompanyName
		}
		if in.ToMeet != nil {
			visitors[i].ToMeet = *in.ToMeet
		}
		if in.Purpose != nil {
			visitors[i].Purpose = *in.Purpose
		}
		if err := s.store.SaveVisitors(ctx, visitors); err != nil {
			return model.Visitor{}, false, err
		}
		return visitors[i], true, nil
	}
	return model.Visitor{}, false, nil
}

// Delete removes the record with the given id. Deleting a missing id leaves
// the collection unchanged.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return err
	}

	kept := visitors[:0]
	for _, v := range visitors {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(visitors) {
		return nil
	}
	return s.store.SaveVisitors(ctx, kept)
}

// DeleteScope names the bulk delete targets.
type DeleteScope string

const (
	ScopeMonth DeleteScope = "month"
	ScopeAll   DeleteScope = "all"
)

// DeleteAll removes every record in the scope: the current calendar month,
// or absolutely everything. It returns the number of removed records.
func (s *Service) DeleteAll(ctx context.Context, scope DeleteScope) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return 0, err
	}

	var kept []model.Visitor
	switch scope {
	case ScopeAll:
		kept = []model.Visitor{}
	case ScopeMonth:
		doomed := make(map[string]struct{})
		for _, v := range query.InWindow(visitors, query.WindowMonth, s.now()) {
			doomed[v.ID] = struct{}{}
		}
		kept = make([]model.Visitor, 0, len(visitors))
		for _, v := range visitors {
			if _, ok := doomed[v.ID]; !ok {
				kept = append(kept, v)
			}
		}
	default:
		return 0, fmt.Errorf("unknown delete scope %q", scope)
	}

	removed := len(visitors) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.store.SaveVisitors(ctx, kept)
}

// ImportAppend assigns a fresh id to every imported row and appends them to
// the collection. No dedup: re-importing a file duplicates its rows.
func (s *Service) ImportAppend(ctx context.Context, rows []model.Visitor) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	for _, row := range rows {
		row.ID = newID(now)
		visitors = append(visitors, row)
	}
	if err := s.store.SaveVisitors(ctx, visitors); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Visitors returns the collection sorted newest check-in first.
func (s *Service) Visitors(ctx context.Context) ([]model.Visitor, error) {
	visitors, err := s.store.LoadVisitors(ctx)
	if err != nil {
		return nil, err
	}
	return query.SortByInTimeDesc(visitors), nil
}

// ToMeetOptions returns the suggestion list.
func (s *Service) ToMeetOptions(ctx context.Context) ([]string, error) {
	return s.store.LoadToMeetOptions(ctx)
}

// AddToMeetOption appends a suggestion if it is not already present.
func (s *Service) AddToMeetOption(ctx context.Context, value string) error {
	if value == "" {
		return &ValidationError{Missing: []string{"value"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rememberToMeet(ctx, value)
}

// RenameToMeetOption replaces a suggestion in place. Existing visitor
// records keep the old value.
func (s *Service) RenameToMeetOption(ctx context.Context, from, to string) error {
	if to == "" {
		return &ValidationError{Missing: []string{"value"}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	options, err := s.store.LoadToMeetOptions(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i, opt := range options {
		if opt == from {
			options[i] = to
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.SaveToMeetOptions(ctx, options)
}

// RemoveToMeetOption drops a suggestion. Existing visitor records that used
// it are not rewritten.
func (s *Service) RemoveToMeetOption(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	options, err := s.store.LoadToMeetOptions(ctx)
	if err != nil {
		return err
	}
	kept := options[:0]
	for _, opt := range options {
		if opt != value {
			kept = append(kept, opt)
		}
	}
	if len(kept) == len(options) {
		return nil
	}
	return s.store.SaveToMeetOptions(ctx, kept)
}

func (s *Service) rememberToMeet(ctx context.Context, value string) error {
	options, err := s.store.LoadToMeetOptions(ctx)
	if err != nil {
		return err
	}
	for _, opt := range options {
		if opt == value {
			return nil
		}
	}
	return s.store.SaveToMeetOptions(ctx, append(options, value))
}

// newID builds a millisecond timestamp plus random suffix, unique across
// the collection and opaque to callers.
func newID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
