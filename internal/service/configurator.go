package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/metrics"
)

// State is the lifecycle phase of a configuration session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateSaving        State = "saving"
	StateQuit          State = "quit"
	StateError         State = "error"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("configuration session not found")
	// ErrSessionFatal is returned for any mutation on a session that cannot reach a usable state.
	ErrSessionFatal = errors.New("configuration session is unusable")
	// ErrInvalidTransition is returned when an event is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid configuration state transition")
	// ErrLineNotFound is returned when an event addresses a row that does not exist.
	ErrLineNotFound = errors.New("configuration line not found")
	// ErrFieldNotEditable is returned when a cell edit targets a display-only column.
	ErrFieldNotEditable = errors.New("field is not editable")
)

// sessionMessage is a user-visible error. Key-based messages are rendered in
// the caller's locale; text messages were already rendered.
type sessionMessage struct {
	key  string
	text string
}

// SaveSummary is what a save trigger produced. When Validation is not valid
// nothing was persisted and the session stays Ready.
type SaveSummary struct {
	State      State
	Validation ValidationResult
	Outcome    SaveOutcome
}

// Session is one user's configuration of a quote. All methods are safe for
// concurrent use; each event holds the session lock until it completes,
// including the store calls made by Save.
type Session struct {
	mu sync.Mutex

	id          string
	quoteID     string
	pricebookID string
	state       State
	fatal       bool
	messages    []sessionMessage

	fieldSet      []model.FieldDescriptor
	fieldsInfo    model.FieldsInfo
	hasRecords    bool
	hasFieldSet   bool
	hasFieldsInfo bool
	seeded        bool

	lines      []model.Line
	grandTotal float64
	selection  Selection

	validator  *Validator
	saver      *SaveProtocol
	translator *i18n.Translator
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSaveProtocol sets the protocol used by Save.
func WithSaveProtocol(p *SaveProtocol) SessionOption {
	return func(s *Session) {
		s.saver = p
	}
}

// WithTranslator sets the translator for validation and error messages.
func WithTranslator(t *i18n.Translator) SessionOption {
	return func(s *Session) {
		if t != nil {
			s.translator = t
		}
	}
}

// NewSession creates an uninitialized session. A session without a quote id
// is fatal from the start.
func NewSession(id, quoteID, pricebookID string, opts ...SessionOption) *Session {
	s := &Session{
		id:          id,
		quoteID:     quoteID,
		pricebookID: pricebookID,
		state:       StateUninitialized,
		selection:   NewSelection(),
		translator:  i18n.GetTranslator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewValidator(s.translator)
	if quoteID == "" {
		s.markFatal(i18n.ErrKeyDirectAccess)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// QuoteID returns the quote being configured.
func (s *Session) QuoteID() string {
	return s.quoteID
}

// PricebookID returns the pricebook the session prices from.
func (s *Session) PricebookID() string {
	return s.pricebookID
}

// Columns returns a copy of the displayed columns.
func (s *Session) Columns() []model.FieldDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FieldDescriptor(nil), s.fieldSet...)
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fatal reports whether the session can only display its errors.
func (s *Session) Fatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// MarkFatal records a message key and disables the session.
func (s *Session) MarkFatal(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markFatal(key)
}

func (s *Session) markFatal(key string) {
	s.fatal = true
	s.state = StateError
	s.messages = append(s.messages, sessionMessage{key: key})
}

// SetRecords replaces the rows. Parent quantities below one become one.
func (s *Session) SetRecords(lines []model.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(); err != nil {
		return err
	}

	rows := model.CloneLines(lines)
	for i := range rows {
		if rows[i].Quantity < 1 {
			rows[i].Quantity = 1
		}
	}
	s.lines = rows
	s.hasRecords = true
	s.initialize()
	return nil
}

// SetFieldSet sets the displayed columns.
func (s *Session) SetFieldSet(fields []model.FieldDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(); err != nil {
		return err
	}

	s.fieldSet = append([]model.FieldDescriptor(nil), fields...)
	s.hasFieldSet = true
	s.initialize()
	return nil
}

// SetFieldsInfo sets the object field metadata used to build save records.
func (s *Session) SetFieldsInfo(info model.FieldsInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(); err != nil {
		return err
	}

	s.fieldsInfo = make(model.FieldsInfo, len(info))
	for k, v := range info {
		s.fieldsInfo[k] = v
	}
	s.hasFieldsInfo = true
	s.initialize()
	return nil
}

func (s *Session) checkMutable() error {
	if s.fatal {
		return ErrSessionFatal
	}
	if s.state == StateSaving || s.state == StateQuit {
		return ErrInvalidTransition
	}
	return nil
}

// initialize moves to Ready once rows, columns and field metadata are all
// present. The selection is seeded from restored options only on the first
// initialization after creation or Back.
func (s *Session) initialize() {
	if !s.hasRecords || !s.hasFieldSet || !s.hasFieldsInfo {
		return
	}
	if s.state != StateUninitialized && s.state != StateReady {
		return
	}

	s.state = StateInitializing
	if !s.seeded {
		s.selection = NewSelection()
		s.selection.Seed(s.lines)
		s.seeded = true
	}
	s.recalculate()
	s.state = StateReady
}

func (s *Session) recalculate() {
	s.lines, s.grandTotal = Recalculate(s.lines, s.selection)
}

// requireReady admits user events in Ready and, after a failed save, in Error.
func (s *Session) requireReady() error {
	if s.fatal {
		return ErrSessionFatal
	}
	switch s.state {
	case StateReady:
		return nil
	case StateError:
		s.state = StateReady
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Toggle selects or deselects an optional child of a bundle. Deselecting a
// mandatory child is ignored.
func (s *Session) Toggle(parentProductID, childProductID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireReady(); err != nil {
		return err
	}

	child, err := s.findChild(parentProductID, childProductID)
	if err != nil {
		return err
	}
	if child.Mandatory && !on {
		return nil
	}

	s.selection.Toggle(parentProductID, childProductID, on)
	s.recalculate()
	return nil
}

func (s *Session) findChild(parentProductID, childProductID string) (*model.Line, error) {
	for i := range s.lines {
		if s.lines[i].ProductID() != parentProductID {
			continue
		}
		for j := range s.lines[i].Children {
			if s.lines[i].Children[j].ProductID() == childProductID {
				return &s.lines[i].Children[j], nil
			}
		}
	}
	return nil, ErrLineNotFound
}

// EditCell applies draft values to the working copy and recomputes totals.
// The batch is applied entirely or not at all.
func (s *Session) EditCell(edits []dto.CellEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireReady(); err != nil {
		return err
	}

	draft := model.CloneLines(s.lines)
	for _, e := range edits {
		if !s.editable(e.Field) {
			return fmt.Errorf("%w: %s", ErrFieldNotEditable, e.Field)
		}
		if e.ParentIndex < 0 || e.ParentIndex >= len(draft) {
			return fmt.Errorf("%w: row %d", ErrLineNotFound, e.ParentIndex)
		}
		row := &draft[e.ParentIndex]
		if e.ChildIndex != nil {
			j := *e.ChildIndex
			if j < 0 || j >= len(row.Children) {
				return fmt.Errorf("%w: row %d.%d", ErrLineNotFound, e.ParentIndex, j)
			}
			row = &row.Children[j]
		}
		if err := row.SetField(e.Field, e.Value); err != nil {
			return err
		}
	}

	s.lines = draft
	s.recalculate()
	return nil
}

func (s *Session) editable(path string) bool {
	for _, fd := range s.fieldSet {
		if fd.Path == path {
			return fd.Editable()
		}
	}
	return false
}

// Save validates the working copy and, when valid, persists it in two phases.
// Validation failures keep the session Ready and are reported in the summary,
// not as an error. Store failures move the session to Error.
func (s *Session) Save(ctx context.Context, locale string) (SaveSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireReady(); err != nil {
		return SaveSummary{State: s.state}, err
	}
	if s.saver == nil {
		return SaveSummary{State: s.state}, errors.New("session has no save protocol")
	}

	s.messages = nil
	result := s.validator.Validate(s.lines, s.selection, s.fieldSet, locale)
	if !result.Valid {
		s.messages = append(s.messages, sessionMessage{text: result.Message})
		return SaveSummary{State: s.state, Validation: result}, nil
	}

	s.state = StateSaving
	payload := BuildSavePayload(s.quoteID, s.lines, s.selection, s.fieldsInfo)
	log.Debug().
		Str("session_id", s.id).
		Str("quote_id", s.quoteID).
		Stringer("payload", payload).
		Msg("Saving configuration")

	outcome, err := s.saver.Execute(ctx, s.quoteID, s.pricebookID, payload)
	if err != nil {
		s.state = StateError
		key := i18n.ErrKeySaveFailed
		if errors.Is(err, ErrPartialSave) {
			key = i18n.ErrKeySavePartial
		}
		s.messages = append(s.messages, sessionMessage{key: key})
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			for _, msg := range saveErr.Messages {
				s.messages = append(s.messages, sessionMessage{text: msg})
			}
		}
		log.Error().Err(err).
			Str("session_id", s.id).
			Str("quote_id", s.quoteID).
			Msg("Configuration save failed")
		return SaveSummary{State: s.state, Validation: result, Outcome: outcome}, err
	}

	s.state = StateQuit
	return SaveSummary{State: s.state, Validation: result, Outcome: outcome}, nil
}

// Back discards the working copy and selection and returns to Uninitialized.
// Columns and field metadata are kept, so the next SetRecords initializes
// again; over HTTP that is the products event.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatal {
		return ErrSessionFatal
	}
	if s.state == StateSaving {
		return ErrInvalidTransition
	}

	s.lines = nil
	s.grandTotal = 0
	s.selection = NewSelection()
	s.hasRecords = false
	s.seeded = false
	s.messages = nil
	s.state = StateUninitialized
	return nil
}

// View returns a snapshot that shares no state with the session.
func (s *Session) View(locale string) dto.ConfigurationView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := dto.ConfigurationView{
		SessionID:   s.id,
		QuoteID:     s.quoteID,
		PricebookID: s.pricebookID,
		State:       string(s.state),
		Lines:       model.CloneLines(s.lines),
		GrandTotal:  s.grandTotal,
		Selection:   s.selection.Snapshot(),
		Fields:      append([]model.FieldDescriptor(nil), s.fieldSet...),
		Fatal:       s.fatal,
	}
	for _, m := range s.messages {
		if m.key != "" {
			view.Errors = append(view.Errors, s.translator.Translate(m.key, locale))
			continue
		}
		view.Errors = append(view.Errors, m.text)
	}
	return view
}

// SessionStore keeps live sessions in memory. Sessions expire after the
// configured idle time; every lookup extends their life.
type SessionStore struct {
	cache      *TTLCache[string, *Session]
	saver      *SaveProtocol
	translator *i18n.Translator
}

// NewSessionStore creates a store holding at most capacity sessions.
func NewSessionStore(saver *SaveProtocol, translator *i18n.Translator, capacity int, idleTTL time.Duration) *SessionStore {
	onEvict := func(id string, _ *Session) {
		metrics.ConfigurationSessions.Dec()
		log.Debug().Str("session_id", id).Msg("Configuration session expired")
	}
	return &SessionStore{
		cache:      NewTTLCache("sessions", capacity, idleTTL, WithEvictionHook(onEvict)),
		saver:      saver,
		translator: translator,
	}
}

// Create registers a new session for the quote.
func (st *SessionStore) Create(quoteID, pricebookID string) *Session {
	s := NewSession(uuid.NewString(), quoteID, pricebookID,
		WithSaveProtocol(st.saver),
		WithTranslator(st.translator),
	)
	st.cache.Set(s.ID(), s)
	metrics.ConfigurationSessions.Inc()
	return s
}

// Get returns a live session and refreshes its idle timer.
func (st *SessionStore) Get(id string) (*Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st.cache.Touch(id)
	return s, nil
}

// Delete removes a session, e.g. after it reached Quit.
func (st *SessionStore) Delete(id string) {
	if _, ok := st.cache.Get(id); !ok {
		return
	}
	st.cache.Invalidate(id)
	metrics.ConfigurationSessions.Dec()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	return st.cache.Len()
}

// Stop releases the store's background cleanup.
func (st *SessionStore) Stop() {
	st.cache.Stop()
}
