package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/Geniuskaa/quran_fest/internal/config"
	"github.com/Geniuskaa/quran_fest/internal/countdown"
	"github.com/Geniuskaa/quran_fest/internal/registration"
	"github.com/Geniuskaa/quran_fest/pkg/parser"
	"github.com/go-chi/chi/v5"
	"github.com/tdewolff/minify/v2"
	"go.uber.org/zap"
)

const XLSX_CONTENT_TYPE = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Deps struct {
	Competition  config.Competition
	Board        *competition.Board
	Clock        *countdown.Clock
	Registration *registration.Service
	Minify       bool
}

type Handler struct {
	logger *zap.Logger

	conf   config.Competition
	board  *competition.Board
	clock  *countdown.Clock
	reg    *registration.Service
	pages  map[string]*template.Template
	assets map[string]asset
	minify *minify.M
}

func NewHandler(logger *zap.Logger, deps Deps) (*Handler, error) {
	h := &Handler{
		logger: logger,
		conf:   deps.Competition,
		board:  deps.Board,
		clock:  deps.Clock,
		reg:    deps.Registration,
		pages:  parseTemplates(),
	}
	if deps.Minify {
		h.minify = newMinifier()
	}

	assets, err := loadAssets(h.minify)
	if err != nil {
		return nil, err
	}
	h.assets = assets

	return h, nil
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.home)
	r.Get("/about", h.about)
	r.Get("/categories", h.categories)
	r.Get("/schedule", h.schedule)
	r.Get("/rules", h.rules)
	r.Get("/judges", h.judges)
	r.Get("/results", h.results)
	r.Get("/results/export", h.resultsExport)
	r.Get("/gallery", h.gallery)
	r.Get("/contact", h.contact)

	r.Get("/register", h.registerForm)
	r.Post("/register", h.registerSubmit)

	r.Get("/api/countdown", h.apiCountdown)
	r.Get("/api/categories", h.apiCategories)

	r.Get("/static/*", h.static)

	r.NotFound(h.notFound)

	return r
}

type homeView struct {
	Left       countdown.TimeLeft
	Target     time.Time
	Categories []competition.Category
}

func (h *Handler) home(writer http.ResponseWriter, request *http.Request) {
	cats := competition.Categories()
	if len(cats) > 3 {
		cats = cats[:3]
	}
	h.render(writer, http.StatusOK, PAGE_HOME, page{
		Active: "/",
		Data:   homeView{Left: h.clock.Left(), Target: h.clock.Target(), Categories: cats},
	})
}

type aboutView struct {
	Levels      []competition.Level
	Eligibility []string
}

func (h *Handler) about(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_ABOUT, page{
		Title:  "About",
		Active: "/about",
		Data:   aboutView{Levels: competition.Levels, Eligibility: competition.Eligibility},
	})
}

type categoriesView struct {
	Categories []competition.Category
	Criteria   []string
}

func (h *Handler) categories(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_CATEGORIES, page{
		Title:  "Categories",
		Active: "/categories",
		Data:   categoriesView{Categories: competition.Categories(), Criteria: competition.Criteria},
	})
}

type scheduleView struct {
	Slots  []competition.ScheduleSlot
	MapURL string
}

func (h *Handler) schedule(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_SCHEDULE, page{
		Title:  "Schedule",
		Active: "/schedule",
		Data:   scheduleView{Slots: competition.Schedule, MapURL: h.conf.MapEmbedURL},
	})
}

func (h *Handler) rules(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_RULES, page{
		Title:  "Rules & Guidelines",
		Active: "/rules",
		Data:   competition.Rules,
	})
}

func (h *Handler) judges(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_JUDGES, page{
		Title:  "Judges",
		Active: "/judges",
		Data:   competition.Judges,
	})
}

type resultsView struct {
	Categories []competition.Category
	Selected   competition.Category
	Podium     competition.Podium
	Results    []competition.Result
}

func (h *Handler) results(writer http.ResponseWriter, request *http.Request) {
	selected, ok := competition.CategoryByID(request.URL.Query().Get("category"))
	if !ok {
		selected, _ = competition.CategoryByID(competition.DEFAULT_RESULTS_CATEGORY)
	}

	results := h.board.Filter(selected.ID)
	h.render(writer, http.StatusOK, PAGE_RESULTS, page{
		Title:  "Results",
		Active: "/results",
		Data: resultsView{
			Categories: competition.Categories(),
			Selected:   selected,
			Podium:     competition.MakePodium(results),
			Results:    results,
		},
	})
}

func (h *Handler) resultsExport(writer http.ResponseWriter, request *http.Request) {
	name := "results.xlsx"
	results := h.board.All()
	if c, ok := competition.CategoryByID(request.URL.Query().Get("category")); ok {
		results = h.board.Filter(c.ID)
		name = "results-" + c.ID + ".xlsx"
	}

	var buf bytes.Buffer
	if err := parser.WriteResultsXlsx(&buf, results); err != nil {
		h.logger.Error("results export failed", zap.Error(err))
		http.Error(writer, "Something going wrong...", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", XLSX_CONTENT_TYPE)
	writer.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	buf.WriteTo(writer)
}

func (h *Handler) gallery(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_GALLERY, page{
		Title:  "Gallery",
		Active: "/gallery",
		Data:   competition.Gallery,
	})
}

type contactView struct {
	MapURL string
}

func (h *Handler) contact(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusOK, PAGE_CONTACT, page{
		Title:  "Contact Us",
		Active: "/contact",
		Data:   contactView{MapURL: h.conf.MapEmbedURL},
	})
}

func (h *Handler) notFound(writer http.ResponseWriter, request *http.Request) {
	h.render(writer, http.StatusNotFound, PAGE_NOT_FOUND, page{Title: "Page not found"})
}

type countdownResponse struct {
	countdown.TimeLeft
	Target time.Time `json:"target"`
	Done   bool      `json:"done"`
}

func (h *Handler) apiCountdown(writer http.ResponseWriter, request *http.Request) {
	left := h.clock.Left()
	h.writeJSON(writer, countdownResponse{TimeLeft: left, Target: h.clock.Target(), Done: left.Done()})
}

func (h *Handler) apiCategories(writer http.ResponseWriter, request *http.Request) {
	h.writeJSON(writer, competition.Categories())
}

func (h *Handler) writeJSON(writer http.ResponseWriter, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		h.logger.Error("json encode failed", zap.Error(err))
	}
}

func (h *Handler) static(writer http.ResponseWriter, request *http.Request) {
	name := chi.URLParam(request, "*")
	a, ok := h.assets[name]
	if !ok {
		h.notFound(writer, request)
		return
	}

	writer.Header().Set("Content-Type", a.contentType)
	writer.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(writer, request, name, time.Time{}, bytes.NewReader(a.body))
}
