package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pageza/recipe-manager/backend/internal/apperror"
	"github.com/pageza/recipe-manager/backend/internal/ingredient"
	"github.com/pageza/recipe-manager/backend/internal/types"
)

// Mode is the state of the form.
type Mode int

const (
	Editing Mode = iota
	Previewing
	Submitting
	Detail
)

func (m Mode) String() string {
	switch m {
	case Editing:
		return "editing"
	case Previewing:
		return "previewing"
	case Submitting:
		return "submitting"
	case Detail:
		return "detail"
	default:
		return "unknown"
	}
}

type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient message shown above the form.
type Notice struct {
	Kind    NoticeKind
	Message string
}

const (
	DefaultNoticeDuration = 1500 * time.Millisecond
	DefaultNavigateDelay  = 1500 * time.Millisecond
)

var (
	ErrInFlight     = errors.New("builder: submission already in flight")
	ErrClosed       = errors.New("builder: form is closed")
	ErrInvalidState = errors.New("builder: form cannot submit in its current mode")
)

// RecipeAPI is the part of the API client the form needs.
type RecipeAPI interface {
	CreateMeal(ctx context.Context, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, id string, req *types.RecipeRequest, image *types.ImageUpload) (*types.RecipeResponse, error)
	GetRecipe(ctx context.Context, id string) (*types.RecipeResponse, error)
}

type Option func(*Form)

// WithScrollToTop sets the hook run when validation errors are surfaced.
func WithScrollToTop(fn func()) Option {
	return func(f *Form) { f.scrollToTop = fn }
}

// WithNavigate sets the hook run with the saved recipe's id once the form
// moves to the detail view.
func WithNavigate(fn func(id string)) Option {
	return func(f *Form) { f.navigate = fn }
}

// WithDelays overrides how long success notices stay up and how long after a
// successful submit the form navigates.
func WithDelays(notice, navigate time.Duration) Option {
	return func(f *Form) {
		f.noticeDuration = notice
		f.navigateDelay = navigate
	}
}

// Form drives one recipe draft through editing, preview and submission.
// Timers it starts are owned by the form and released by Close.
type Form struct {
	api RecipeAPI

	mu        sync.Mutex
	draft     Draft
	errs      FormErrors
	mode      Mode
	inFlight  bool
	notice    *Notice
	noticeSeq uint64
	detailID  string
	timers    map[*time.Timer]struct{}
	closed    bool

	noticeDuration time.Duration
	navigateDelay  time.Duration
	scrollToTop    func()
	navigate       func(id string)
}

// NewForm returns a form in create mode with an empty draft.
func NewForm(api RecipeAPI, opts ...Option) *Form {
	f := &Form{
		api:            api,
		errs:           FormErrors{},
		timers:         make(map[*time.Timer]struct{}),
		noticeDuration: DefaultNoticeDuration,
		navigateDelay:  DefaultNavigateDelay,
		scrollToTop:    func() {},
		navigate:       func(string) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LoadForm returns a form in edit mode for the stored recipe id.
func LoadForm(ctx context.Context, api RecipeAPI, id string, opts ...Option) (*Form, error) {
	recipe, err := api.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	f := NewForm(api, opts...)
	f.draft = DraftFromRecipe(recipe)
	return f, nil
}

func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

func (f *Form) Errors() FormErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs.clone()
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// InFlight reports whether a submission is waiting on the API.
func (f *Form) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Notice returns the current notice, if any.
func (f *Form) Notice() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notice == nil {
		return Notice{}, false
	}
	return *f.notice, true
}

// DetailID is the id of the saved recipe once the form reached Detail.
func (f *Form) DetailID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailID
}

func (f *Form) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Name = name
}

func (f *Form) SetInstructions(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Instructions = text
}

// SetPrepTime sets the prep time in minutes; nil clears it.
func (f *Form) SetPrepTime(minutes *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if minutes == nil {
		f.draft.PrepTime = nil
		return
	}
	v := *minutes
	f.draft.PrepTime = &v
}

func (f *Form) SetMacros(m *types.MacrosPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m == nil {
		f.draft.Macros = nil
		return
	}
	c := *m
	f.draft.Macros = &c
}

func (f *Form) SetImage(img *types.ImageUpload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Image = img
}

// ApplyGenerated fills name, ingredients, instructions and the remaining
// details from a generated recipe. The bound id and image are kept.
func (f *Form) ApplyGenerated(g *types.GeneratedRecipe) {
	gen := DraftFromGenerated(g)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Name = gen.Name
	f.draft.Ingredients = gen.Ingredients
	f.draft.Instructions = gen.Instructions
	f.draft.Details = gen.Details
	delete(f.errs, FieldIngredients)
}

// AddIngredient appends the trimmed text. Invalid text changes nothing,
// including existing errors, and is reported as a validation error.
func (f *Form) AddIngredient(text string) error {
	item, err := ingredient.Validate(text)
	if err != nil {
		return apperror.Validation("", map[string]string{FieldIngredients: ingredientMessage(err)}).WithCause(err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Ingredients = append(f.draft.Ingredients, item)
	delete(f.errs, FieldIngredients)
	return nil
}

// RemoveIngredient removes the entry at index. Out of range indexes are
// ignored. Removing the last entry flags the ingredients field.
func (f *Form) RemoveIngredient(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.draft.Ingredients) {
		return
	}
	f.draft.Ingredients = append(f.draft.Ingredients[:index:index], f.draft.Ingredients[index+1:]...)
	if len(f.draft.Ingredients) == 0 {
		f.errs[FieldIngredients] = msgIngredientRequired
	}
}

// TogglePreview moves Editing to Previewing when the draft is valid, and
// Previewing back to Editing. It returns the resulting mode.
func (f *Form) TogglePreview() Mode {
	f.mu.Lock()
	switch f.mode {
	case Previewing:
		f.mode = Editing
		f.mu.Unlock()
		return Editing
	case Editing:
	default:
		mode := f.mode
		f.mu.Unlock()
		return mode
	}

	if errs := Validate(f.draft); len(errs) > 0 {
		f.errs = errs
		f.mu.Unlock()
		f.scrollToTop()
		return Editing
	}

	f.errs = FormErrors{}
	f.mode = Previewing
	f.showNotice(NoticeSuccess, "Preview ready. Review your recipe before saving.")
	f.mu.Unlock()
	return Previewing
}

// Back returns from Previewing to Editing.
func (f *Form) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == Previewing {
		f.mode = Editing
	}
}

// Submit validates the draft and creates or updates the recipe. On success
// the form navigates to the detail view after the navigate delay; on failure
// it returns to Editing with an error notice and the draft unchanged.
func (f *Form) Submit(ctx context.Context) (*types.RecipeResponse, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return nil, ErrClosed
	case f.inFlight:
		f.mu.Unlock()
		return nil, ErrInFlight
	case f.mode != Editing && f.mode != Previewing:
		f.mu.Unlock()
		return nil, ErrInvalidState
	}

	if errs := Validate(f.draft); len(errs) > 0 {
		f.errs = errs
		f.mode = Editing
		f.mu.Unlock()
		f.scrollToTop()
		return nil, apperror.Validation("", errs)
	}

	draft := f.draft.Clone()
	f.mode = Submitting
	f.inFlight = true
	f.mu.Unlock()

	req := BuildRequest(draft)
	var (
		resp *types.RecipeResponse
		err  error
	)
	if draft.ID == "" {
		resp, err = f.api.CreateMeal(ctx, req, draft.Image)
	} else {
		resp, err = f.api.UpdateRecipe(ctx, draft.ID, req, draft.Image)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.closed {
		return resp, err
	}

	if err != nil {
		f.mode = Editing
		f.showNotice(NoticeError, UserMessage(err))
		return nil, err
	}

	msg := "Recipe created successfully!"
	if draft.ID != "" {
		msg = "Recipe updated successfully!"
	}
	f.draft.ID = resp.ID
	f.showNotice(NoticeSuccess, msg)

	id := resp.ID
	f.after(f.navigateDelay, func() {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		f.mode = Detail
		f.detailID = id
		f.mu.Unlock()
		f.navigate(id)
	})
	return resp, nil
}

// Close stops pending notice and navigation timers. The form ignores timer
// callbacks and submission results that arrive afterwards.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for t := range f.timers {
		t.Stop()
	}
	f.timers = map[*time.Timer]struct{}{}
}

// showNotice must be called with f.mu held. Success notices clear themselves
// unless a newer notice replaced them first.
func (f *Form) showNotice(kind NoticeKind, message string) {
	f.noticeSeq++
	seq := f.noticeSeq
	f.notice = &Notice{Kind: kind, Message: message}
	if kind != NoticeSuccess {
		return
	}
	f.after(f.noticeDuration, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.noticeSeq == seq {
			f.notice = nil
		}
	})
}

// after must be called with f.mu held.
func (f *Form) after(d time.Duration, fn func()) {
	if f.closed {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		delete(f.timers, t)
		f.mu.Unlock()
		fn()
	})
	f.timers[t] = struct{}{}
}

// UserMessage is the text shown for a failed call.
func UserMessage(err error) string {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return apperror.MsgUnknown
}

func ingredientMessage(err error) string {
	if errors.Is(err, ingredient.ErrNumeric) {
		return "Ingredients must name a food, not just a quantity"
	}
	return fmt.Sprintf("Each ingredient must be at least %d characters", ingredient.MinLength)
}
