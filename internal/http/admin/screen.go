package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/export"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/resource"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/store"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

// screen binds the list and form pages of one collection to its store.
type screen[T model.Entity[T]] struct {
	store    *store.Store[T]
	title    string
	singular string
	columns  []export.Column[T]
	fields   []fieldSpec

	encode func(T) url.Values
	// decode parses submitted values; problems it can detect before schema
	// validation, such as a non-numeric price, are returned per field.
	decode func(url.Values) (T, map[string]string)
	// check runs after schema validation; nil means no extra checks.
	check func(T) map[string]string
	// prepare loads what the form needs from other stores; it may be nil.
	prepare func(ctx context.Context)
}

type screenHandler[T model.Entity[T]] struct {
	*Service
	screen[T]
}

func registerScreen[T model.Entity[T]](r chi.Router, s *Service, sc screen[T]) {
	h := &screenHandler[T]{Service: s, screen: sc}

	r.Route("/"+h.collection(), func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/new", h.newForm)
		r.Post("/new", h.create)
		r.Get("/edit/{id}", h.editForm)
		r.Post("/edit/{id}", h.update)
		r.Get("/delete/{id}", h.confirmDelete)
		r.Post("/delete/{id}", h.delete)
		r.Post("/refresh", h.refresh)
		r.Get("/export.xlsx", h.export)
	})
}

func (h *screenHandler[T]) collection() string {
	return h.store.Collection().String()
}

// storeContext detaches store calls from the browser connection: an
// operation that has reached the API completes even if the tab is closed.
func storeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// loader is the part of a store a screen needs to bring it up to date.
type loader interface {
	State() store.State
	EnsureLoaded(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// load fetches the collection on first use and again whenever the store's
// last operation failed, so reopening a screen recovers once the API is back.
func load(ctx context.Context, l loader) error {
	if l.State() == store.StateFailed {
		return l.Refresh(ctx)
	}
	return l.EnsureLoaded(ctx)
}

type listRow struct {
	ID    string
	Cells []string
}

type listPage struct {
	Collection string
	Title      string
	Singular   string
	Headers    []string
	Rows       []listRow
	Loading    bool
	Err        string
}

func (h *screenHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	//nolint:errcheck
	load(storeContext(r), h.store)

	snap := h.store.Snapshot()
	page := listPage{
		Collection: h.collection(),
		Title:      h.title,
		Singular:   h.singular,
		Loading:    snap.Loading,
	}
	if snap.Err != nil {
		page.Err = snap.Err.Error()
	}

	// the id column is the edit link target, not a visible cell
	columns := h.columns[1:]
	for _, c := range columns {
		page.Headers = append(page.Headers, c.Header)
	}
	for _, item := range snap.Items {
		row := listRow{ID: item.GetID()}
		for _, c := range columns {
			row.Cells = append(row.Cells, fmt.Sprint(c.Value(item)))
		}
		page.Rows = append(page.Rows, row)
	}

	h.render(w, r, http.StatusOK, pageList, h.title, h.collection(), page)
}

type formPage struct {
	Collection string
	Singular   string
	Action     string
	Editing    bool
	Fields     []formField
}

func (h *screenHandler[T]) newForm(w http.ResponseWriter, r *http.Request) {
	h.prepareForm(r)
	h.renderForm(w, r, http.StatusOK, "", url.Values{}, nil, nil)
}

func (h *screenHandler[T]) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.prepareForm(r)

	entity, ok := h.find(w, r, id)
	if !ok {
		return
	}

	h.renderForm(w, r, http.StatusOK, id, h.encode(entity), nil, nil)
}

func (h *screenHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	draft, values, ok := h.parse(w, r, "")
	if !ok {
		return
	}

	if _, err := h.store.Add(storeContext(r), draft); err != nil {
		h.renderStoreError(w, r, "", values, fmt.Sprintf("Could not save the %s", h.singular), err)
		return
	}

	redirect(w, r, "/"+h.collection(), noticeSuccess, fmt.Sprintf("%s saved", capitalize(h.singular)))
}

func (h *screenHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.find(w, r, id); !ok {
		return
	}

	entity, values, ok := h.parse(w, r, id)
	if !ok {
		return
	}

	if _, err := h.store.Update(storeContext(r), entity.WithID(id)); err != nil {
		h.renderStoreError(w, r, id, values, fmt.Sprintf("Could not update the %s", h.singular), err)
		return
	}

	redirect(w, r, "/"+h.collection(), noticeSuccess, fmt.Sprintf("%s updated", capitalize(h.singular)))
}

type detail struct {
	Label string
	Value string
}

type confirmPage struct {
	Collection string
	Singular   string
	Action     string
	Details    []detail
}

func (h *screenHandler[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entity, ok := h.find(w, r, id)
	if !ok {
		return
	}

	page := confirmPage{
		Collection: h.collection(),
		Singular:   h.singular,
		Action:     "/" + h.collection() + "/delete/" + url.PathEscape(id),
	}
	for _, c := range h.columns {
		page.Details = append(page.Details, detail{Label: c.Header, Value: fmt.Sprint(c.Value(entity))})
	}

	h.render(w, r, http.StatusOK, pageConfirm, "Delete "+h.singular, h.collection(), page)
}

func (h *screenHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.Remove(storeContext(r), id); err != nil {
		h.logger.WarnContext(r.Context(), "remove failed",
			slog.String("collection", h.collection()),
			slog.String("id", id),
			slog.Any("error", err))
		redirect(w, r, "/"+h.collection(), noticeError,
			fmt.Sprintf("Could not delete the %s: %s", h.singular, describe(err)))
		return
	}

	redirect(w, r, "/"+h.collection(), noticeSuccess, fmt.Sprintf("%s deleted", capitalize(h.singular)))
}

func (h *screenHandler[T]) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(storeContext(r)); err != nil {
		redirect(w, r, "/"+h.collection(), noticeError,
			fmt.Sprintf("Could not reload %s: %s", h.collection(), describe(err)))
		return
	}

	redirect(w, r, "/"+h.collection(), noticeSuccess, fmt.Sprintf("%s reloaded", h.title))
}

func (h *screenHandler[T]) export(w http.ResponseWriter, r *http.Request) {
	//nolint:errcheck
	load(storeContext(r), h.store)

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, h.collection(), h.columns, h.store.Items()); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", slog.Any("error", err))
		redirect(w, r, "/"+h.collection(), noticeError, "Could not export the list")
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", h.collection(), time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// parse decodes and validates the submitted form. When it fails the form is
// re-rendered with the user's input and ok is false.
func (h *screenHandler[T]) parse(w http.ResponseWriter, r *http.Request, id string) (entity T, values url.Values, ok bool) {
	h.prepareForm(r)
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, id, url.Values{}, nil,
			&notice{Level: noticeError, Message: "Could not read the submitted form"})
		return entity, nil, false
	}
	values = r.PostForm

	entity, fieldErrs := h.decode(values)
	if fieldErrs == nil {
		fieldErrs = map[string]string{}
	}
	for field, msg := range validator.FieldErrors(h.validator.Validate(entity)) {
		if _, seen := fieldErrs[field]; !seen {
			fieldErrs[field] = msg
		}
	}
	if len(fieldErrs) == 0 && h.check != nil {
		maps.Copy(fieldErrs, h.check(entity))
	}

	if len(fieldErrs) > 0 {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, values, fieldErrs,
			&notice{Level: noticeError, Message: "Please fix the highlighted fields"})
		return entity, values, false
	}

	return entity, values, true
}

func (h *screenHandler[T]) prepareForm(r *http.Request) {
	if h.prepare != nil {
		h.prepare(storeContext(r))
	}
}

func (h *screenHandler[T]) renderForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	id string,
	values url.Values,
	fieldErrs map[string]string,
	n *notice,
) {
	action := "/" + h.collection() + "/new"
	title := "New " + h.singular
	if id != "" {
		action = "/" + h.collection() + "/edit/" + url.PathEscape(id)
		title = "Edit " + h.singular
	}

	page := formPage{
		Collection: h.collection(),
		Singular:   h.singular,
		Action:     action,
		Editing:    id != "",
		Fields:     buildFields(h.fields, values, fieldErrs),
	}

	h.renderWithNotice(w, r, status, pageForm, title, h.collection(), n, page)
}

func (h *screenHandler[T]) renderStoreError(w http.ResponseWriter, r *http.Request, id string, values url.Values, prefix string, err error) {
	h.logger.WarnContext(r.Context(), "store operation failed",
		slog.String("collection", h.collection()),
		slog.Any("error", err))

	status := http.StatusBadGateway
	if !resource.IsTransportError(err) {
		status = http.StatusInternalServerError
	}

	h.renderForm(w, r, status, id, values, nil,
		&notice{Level: noticeError, Message: fmt.Sprintf("%s: %s", prefix, describe(err))})
}

// find loads the store and looks id up. When the id is missing the browser
// goes back to the list, told about the load error if the store could not
// be loaded.
func (h *screenHandler[T]) find(w http.ResponseWriter, r *http.Request, id string) (T, bool) {
	loadErr := load(storeContext(r), h.store)

	entity, err := h.store.Find(id)
	if err == nil {
		return entity, true
	}

	if loadErr != nil {
		redirect(w, r, "/"+h.collection(), noticeError,
			fmt.Sprintf("Could not load %s: %s", h.collection(), describe(loadErr)))
		return entity, false
	}

	h.redirectNotFound(w, r, err)
	return entity, false
}

func (h *screenHandler[T]) redirectNotFound(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, apperr.NotFoundInLocalStateErr) {
		h.logger.WarnContext(r.Context(), "unexpected lookup error", slog.Any("error", err))
	}

	redirect(w, r, "/"+h.collection(), noticeError, fmt.Sprintf("%s not found", capitalize(h.singular)))
}

// describe turns a store error into a short message for the notice banner.
func describe(err error) string {
	if status := resource.StatusCode(err); status != 0 {
		return fmt.Sprintf("the API answered %d %s", status, http.StatusText(status))
	}
	if resource.IsTransportError(err) {
		return "the API could not be reached"
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
