package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/tagnote/pkg/codec"
)

const (
	defaultEventBuffer = 100
	maxIDAttempts      = 8
)

// Service owns the canonical note collection.
//
// Every mutation holds the write lock while it persists the whole collection,
// so writes are applied one at a time and memory only changes after storage
// accepted the new document.
type Service struct {
	storage Storage
	codec   Codec
	logger  *slog.Logger
	caps    Capabilities
	now     func() time.Time
	newID   func() string

	eventBufferSize int

	mu           sync.RWMutex
	notes        []Note
	placeholders []string
	loaded       bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for non-fatal problems.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithCodec sets the document encoding. Defaults to JSON.
func WithCodec(c Codec) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithCapabilities selects the app variant. Defaults to VariantStandard.
func WithCapabilities(c Capabilities) ServiceOption {
	return func(s *Service) { s.caps = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides note id generation.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) { s.newID = fn }
}

// WithEventBufferSize sets the buffer of channels returned by Watch.
func WithEventBufferSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service. Call Load before use.
func NewService(storage Storage, opts ...ServiceOption) *Service {
	s := &Service{
		storage:         storage,
		codec:           codec.JSON(),
		caps:            VariantStandard,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
		eventBufferSize: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities returns the variant flags the service was built with.
func (s *Service) Capabilities() Capabilities {
	return s.caps
}

// Storage returns the underlying storage adapter.
func (s *Service) Storage() Storage {
	return s.storage
}

// Codec returns the document encoding.
func (s *Service) Codec() Codec {
	return s.codec
}

// Load reads the persisted collection. A missing or unreadable document
// leaves the collection empty; the problem is logged, not returned.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, placeholders := s.read(ctx)
	s.notes = notes
	s.placeholders = prunePlaceholders(placeholders, notes)
	s.loaded = true
}

func (s *Service) read(ctx context.Context) ([]Note, []string) {
	var notes []Note
	if err := s.decode(ctx, NotesKey, &notes); err != nil {
		s.warn("loading notes failed, starting empty", err)
		notes = nil
	}

	var placeholders []string
	if err := s.decode(ctx, TagsKey, &placeholders); err != nil {
		s.warn("loading tags failed, ignoring placeholders", err)
		placeholders = nil
	}
	return notes, placeholders
}

func (s *Service) decode(ctx context.Context, key string, v any) error {
	data, err := s.storage.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := s.codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "error", err)
	}
}

// Notes returns a snapshot of the collection in insertion order.
func (s *Service) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

// Get returns the note with id.
func (s *Service) Get(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.notes, id); i >= 0 {
		return s.notes[i], nil
	}
	return Note{}, fmt.Errorf("note %s: %w", id, ErrNotFound)
}

// Tags lists every known tag: tags referenced by notes first, then placeholders.
func (s *Service) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagsLocked()
}

func (s *Service) tagsLocked() []string {
	tags := DistinctTags(s.notes)
	for _, p := range s.placeholders {
		if !slices.Contains(tags, p) {
			tags = append(tags, p)
		}
	}
	return tags
}

// GroupByTag groups the current collection, see GroupByTag.
func (s *Service) GroupByTag() []TagGroup {
	return GroupByTag(s.Notes())
}

// FilterByTag filters the current collection, see FilterByTag.
func (s *Service) FilterByTag(tag string) []Note {
	return FilterByTag(s.Notes(), tag)
}

// Search searches the current collection, see Search.
func (s *Service) Search(query string) []Note {
	return Search(s.Notes(), query)
}

// Add creates a note and persists the collection.
func (s *Service) Add(ctx context.Context, title, content, tag string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.allocateID()
	if err != nil {
		return Note{}, err
	}

	now := s.now()
	note := Note{
		ID:        id,
		Title:     titleOrDefault(title),
		Content:   content,
		Tag:       tag,
		CreatedAt: now,
		UpdatedAt: now,
	}

	next := append(cloneNotes(s.notes), note)
	if err := s.commit(ctx, next, fmt.Sprintf("add note %s", id)); err != nil {
		return Note{}, err
	}
	return note, nil
}

func (s *Service) allocateID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && indexOf(s.notes, id) < 0 {
			return id, nil
		}
	}
	return "", ErrDuplicateID
}

// Update merges patch into the note with id. A missing id is a no-op.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.notes, id)
	if i < 0 {
		if s.logger != nil {
			s.logger.Debug("update skipped, note not found", "id", id)
		}
		return nil
	}

	next := cloneNotes(s.notes)
	patch.apply(&next[i])
	next[i].UpdatedAt = s.now()

	return s.commit(ctx, next, fmt.Sprintf("update note %s", id))
}

// Delete removes the note with id. A missing id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.notes, id)
	if i < 0 {
		return nil
	}

	next := slices.Delete(cloneNotes(s.notes), i, i+1)
	return s.commit(ctx, next, fmt.Sprintf("delete note %s", id))
}

// RetagAll moves every note tagged oldTag to newTag and returns how many moved.
func (s *Service) RetagAll(ctx context.Context, oldTag, newTag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retagLocked(ctx, oldTag, newTag, fmt.Sprintf("retag %q to %q", oldTag, newTag))
}

// ClearTag removes tag from every note carrying it. Notes are kept.
func (s *Service) ClearTag(ctx context.Context, tag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retagLocked(ctx, tag, "", fmt.Sprintf("clear tag %q", tag))
}

func (s *Service) retagLocked(ctx context.Context, oldTag, newTag, reason string) (int, error) {
	next := cloneNotes(s.notes)
	now := s.now()
	changed := 0
	for i := range next {
		if next[i].Tag == oldTag {
			next[i].Tag = newTag
			next[i].UpdatedAt = now
			changed++
		}
	}

	if err := s.commit(ctx, next, reason); err != nil {
		return 0, err
	}
	return changed, nil
}

// CreateTag registers a tag that no note carries yet.
func (s *Service) CreateTag(ctx context.Context, name string) error {
	if !s.caps.TagManagement {
		return fmt.Errorf("create tag: %w", ErrUnsupported)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.tagsLocked(), name) {
		return fmt.Errorf("%q: %w", name, ErrDuplicateTag)
	}

	next := append(slices.Clone(s.placeholders), name)
	if err := s.persistPlaceholders(ctx, next, fmt.Sprintf("create tag %q", name)); err != nil {
		return err
	}
	s.placeholders = next
	return nil
}

// RenameTag validates newTag and moves every note from oldTag to it.
func (s *Service) RenameTag(ctx context.Context, oldTag, newTag string) (int, error) {
	if !s.caps.TagManagement {
		return 0, fmt.Errorf("rename tag: %w", ErrUnsupported)
	}
	newTag = strings.TrimSpace(newTag)
	if newTag == "" {
		return 0, ErrEmptyTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if newTag != oldTag && slices.Contains(s.tagsLocked(), newTag) {
		return 0, fmt.Errorf("%q: %w", newTag, ErrDuplicateTag)
	}

	changed, err := s.retagLocked(ctx, oldTag, newTag, fmt.Sprintf("rename tag %q to %q", oldTag, newTag))
	if err != nil {
		return 0, err
	}
	if i := slices.Index(s.placeholders, oldTag); i >= 0 && newTag != oldTag {
		next := slices.Clone(s.placeholders)
		next[i] = newTag
		next = prunePlaceholders(next, s.notes)
		if err := s.persistPlaceholders(ctx, next, fmt.Sprintf("rename tag %q to %q", oldTag, newTag)); err != nil {
			return changed, err
		}
		s.placeholders = next
	}
	return changed, nil
}

// DeleteTag clears tag from every note and forgets it as a placeholder.
func (s *Service) DeleteTag(ctx context.Context, tag string) (int, error) {
	if !s.caps.TagManagement {
		return 0, fmt.Errorf("delete tag: %w", ErrUnsupported)
	}
	if strings.TrimSpace(tag) == "" {
		return 0, ErrEmptyTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.retagLocked(ctx, tag, "", fmt.Sprintf("delete tag %q", tag))
	if err != nil {
		return 0, err
	}
	if slices.Contains(s.placeholders, tag) {
		next := slices.DeleteFunc(slices.Clone(s.placeholders), func(p string) bool { return p == tag })
		if err := s.persistPlaceholders(ctx, next, fmt.Sprintf("delete tag %q", tag)); err != nil {
			return changed, err
		}
		s.placeholders = next
	}
	return changed, nil
}

// commit persists next as the whole collection and only then swaps it in.
// Placeholders adopted by a note are dropped afterwards. Caller holds s.mu.
// A change reason already carried by ctx wins over reason.
func (s *Service) commit(ctx context.Context, next []Note, reason string) error {
	reason = ChangeReason(ctx, reason)
	data, err := s.codec.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	if err := s.storage.Set(WithChangeReason(ctx, reason), NotesKey, data); err != nil {
		if s.logger != nil {
			s.logger.Error("persisting notes failed", "reason", reason, "error", err)
		}
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.notes = next

	pruned := prunePlaceholders(s.placeholders, next)
	if len(pruned) != len(s.placeholders) {
		if err := s.persistPlaceholders(ctx, pruned, "prune adopted tags"); err != nil {
			return err
		}
		s.placeholders = pruned
	}
	return nil
}

func (s *Service) persistPlaceholders(ctx context.Context, tags []string, reason string) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := s.codec.Marshal(tags)
	if err != nil {
		return fmt.Errorf("%w: encode tags: %w", ErrPersist, err)
	}
	if err := s.storage.Set(WithChangeReason(ctx, ChangeReason(ctx, reason)), TagsKey, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Watch reloads the collection whenever storage reports an outside change
// to the notes or tags documents, and forwards those events.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.storage.(Watchable)
	if !ok {
		return nil, fmt.Errorf("watch: %w", ErrUnsupported)
	}

	upstream, err := w.Watch(ctx, "{"+NotesKey+","+TagsKey+"}")
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBufferSize)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				s.Load(ctx)
				if s.logger != nil {
					s.logger.Debug("reloaded after external change", "key", e.Key, "type", e.Type)
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		if s.logger != nil {
			s.logger.Error("watch bridge panic", "error", err)
		}
	}))

	return out, nil
}

func indexOf(notes []Note, id string) int {
	return slices.IndexFunc(notes, func(n Note) bool { return n.ID == id })
}

func prunePlaceholders(placeholders []string, notes []Note) []string {
	if len(placeholders) == 0 {
		return placeholders
	}
	out := make([]string, 0, len(placeholders))
	for _, p := range placeholders {
		if p == "" || CountTag(notes, p) > 0 || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
