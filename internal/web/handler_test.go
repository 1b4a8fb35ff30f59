package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/Geniuskaa/quran_fest/internal/config"
	"github.com/Geniuskaa/quran_fest/internal/countdown"
	"github.com/Geniuskaa/quran_fest/internal/registration"
	"github.com/Geniuskaa/quran_fest/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var tokenRe = regexp.MustCompile(`name="token" value="([0-9a-f-]{36})"`)

type stubSender struct {
	mu     sync.Mutex
	bodies [][]byte
	err    error
}

func (s *stubSender) Send(ctx context.Context, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return s.err
}

func (s *stubSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

type fixture struct {
	router http.Handler
	reg    *registration.Service
	sender *stubSender
}

func newFixture(t *testing.T) *fixture {
	v, err := registration.NewValidator(true)
	require.NoError(t, err)
	g, err := registration.NewGuard(0, time.Hour)
	require.NoError(t, err)
	t.Cleanup(g.Close)

	sender := &stubSender{}
	reg := registration.NewService(zap.NewNop(), v, g, sender, nil, true)

	target := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := countdown.NewClock(target, func() time.Time {
		return target.Add(-(26*time.Hour + 3*time.Minute + 4*time.Second))
	})

	h, err := NewHandler(zap.NewNop(), Deps{
		Competition: config.Competition{
			PaymentLink: "https://pay.example.com/quran-fest",
			MapEmbedURL: "https://maps.example.com/embed",
		},
		Board:        competition.SeedBoard(),
		Clock:        clock,
		Registration: reg,
		Minify:       true,
	})
	require.NoError(t, err)

	return &fixture{router: h.Routes(), reg: reg, sender: sender}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return f.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (f *fixture) post(t *testing.T, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(t, req)
}

func validValues(token string) url.Values {
	return url.Values{
		"token":         {token},
		"fullName":      {"Amina Yusuf"},
		"dateOfBirth":   {"2000-01-15"},
		"gender":        {"female"},
		"category":      {competition.HIFZ_5},
		"phone":         {"+44 7917 044585"},
		"email":         {"amina@example.com"},
		"address":       {"1 High Street, London"},
		"transactionId": {"0FT064904K8018433"},
	}
}

func formToken(t *testing.T, body string) string {
	m := tokenRe.FindStringSubmatch(body)
	require.Len(t, m, 2, "form token not found")
	return m[1]
}

func TestPagesRender(t *testing.T) {
	f := newFixture(t)

	pages := map[string]string{
		"/":           "Celebrating the Qur",
		"/about":      "Our Mission",
		"/categories": "Register for this category",
		"/schedule":   "Grand Finale (All Categories)",
		"/rules":      "Online Guidelines",
		"/judges":     "Sheikh Abdullah Basfar",
		"/gallery":    "Young Participants",
		"/contact":    "londonquranfest@gmail.com",
	}
	for path, want := range pages {
		rec := f.get(t, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
		assert.Contains(t, rec.Body.String(), "Annual Quran Competition", path)
	}
}

func TestHomeCountdown(t *testing.T) {
	f := newFixture(t)

	body := f.get(t, "/").Body.String()
	assert.Contains(t, body, `data-unit="Days">01</span>`)
	assert.Contains(t, body, `data-unit="Seconds">04</span>`)

	rec := f.get(t, "/api/countdown")
	require.Equal(t, http.StatusOK, rec.Code)

	var left map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &left))
	assert.EqualValues(t, 1, left["days"])
	assert.EqualValues(t, 2, left["hours"])
	assert.EqualValues(t, 3, left["minutes"])
	assert.Equal(t, false, left["done"])
}

func TestNotFound(t *testing.T) {
	rec := newFixture(t).get(t, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Page not found")
}

func TestResultsFilter(t *testing.T) {
	f := newFixture(t)

	body := f.get(t, "/results?category=hifz-20").Body.String()
	require.Contains(t, body, "Yusuf Khan")
	require.Contains(t, body, "Ibrahim Musa")
	require.NotContains(t, body, "Abdullah Ahmed")

	// Podium shows second place first, the table is ordered by rank.
	podium := body[strings.Index(body, `class="podium"`):strings.Index(body, "<table")]
	require.Less(t, strings.Index(podium, "Ibrahim Musa"), strings.Index(podium, "Yusuf Khan"))
	table := body[strings.Index(body, "<table"):]
	require.Less(t, strings.Index(table, "Yusuf Khan"), strings.Index(table, "Ibrahim Musa"))

	require.Contains(t, f.get(t, "/results?category=hifz-5").Body.String(), "No results available for this category yet.")
	require.Contains(t, f.get(t, "/results?category=nope").Body.String(), "Abdullah Ahmed")
}

func TestResultsExport(t *testing.T) {
	rec := newFixture(t).get(t, "/results/export?category=hifz-20")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, XLSX_CONTENT_TYPE, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "results-hifz-20.xlsx")

	resp, err := parser.ParseResultsXlsx(rec.Body)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "Yusuf Khan", resp.Results[0].Name)
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/static/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css"))
	require.NotEmpty(t, rec.Body.String())

	require.Equal(t, http.StatusNotFound, f.get(t, "/static/missing.js").Code)
}

func TestRegisterFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/register?category=hifz-5")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `value="hifz-5" selected`)
	token := formToken(t, body)

	rec = f.post(t, validValues(token))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	require.Contains(t, body, "Registration Successful!")
	require.Contains(t, body, "Amina Yusuf")
	require.Contains(t, body, "5 Juz Category")
	require.Contains(t, body, "Register Another Participant")
	require.Equal(t, 1, f.sender.calls())

	// Posting the same form again shows the same confirmation without a second send.
	rec = f.post(t, validValues(token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Registration Successful!")
	require.Equal(t, 1, f.sender.calls())

	// Register another participant: a fresh empty form.
	rec = f.get(t, "/register")
	body = rec.Body.String()
	require.NotContains(t, body, "Amina Yusuf")
	require.NotContains(t, body, " selected")
	require.Contains(t, body, `value="male" checked`)
	require.NotEqual(t, token, formToken(t, body))
}

func TestRegisterInvalidKeepsInput(t *testing.T) {
	f := newFixture(t)

	values := validValues(f.reg.NewToken())
	values.Set("phone", "07917044585")
	values.Set("dateOfBirth", "2014-02-02")

	rec := f.post(t, values)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Phone number must start with +")
	require.Contains(t, body, "required for participants under 18")
	require.Contains(t, body, `value="Amina Yusuf"`)
	require.Zero(t, f.sender.calls())
}

func TestRegisterIntakeFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("intake down")

	token := f.reg.NewToken()
	rec := f.post(t, validValues(token))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), GENERIC_ERROR)
	require.Contains(t, rec.Body.String(), token)

	f.sender.err = nil
	rec = f.post(t, validValues(token))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, f.sender.calls())
}

func TestRegisterClosed(t *testing.T) {
	f := newFixture(t)
	f.reg.SetOpen(false)

	rec := f.get(t, "/register")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Registration is currently closed")

	rec = f.post(t, validValues(f.reg.NewToken()))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Zero(t, f.sender.calls())
}

func multipartRequest(t *testing.T, values url.Values, fileName string, file []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	part, err := w.CreateFormFile(registration.FIELD_PAYMENT_FILE, fileName)
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRegisterWithPaymentProof(t *testing.T) {
	f := newFixture(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	rec := f.do(t, multipartRequest(t, validValues(f.reg.NewToken()), "receipt.png", img.Bytes()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.sender.calls())

	var sent struct {
		PaymentFile registration.PaymentFile `json:"paymentFile"`
	}
	require.NoError(t, json.Unmarshal(f.sender.bodies[0], &sent))
	require.Equal(t, "image/png", sent.PaymentFile.Type)
	require.Equal(t, "receipt.png", sent.PaymentFile.Name)
}

func TestRegisterRejectsNonImageProof(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, multipartRequest(t, validValues(f.reg.NewToken()), "receipt.png", []byte("plain text, not a picture")))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "Please upload an image file")
	require.Zero(t, f.sender.calls())
}

func oversizedPNG(size int) []byte {
	var img bytes.Buffer
	png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return append(img.Bytes(), make([]byte, size)...)
}

// fileFirstRequest puts the file part before the text fields.
func fileFirstRequest(t *testing.T, values url.Values, file []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(registration.FIELD_PAYMENT_FILE, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRegisterOversizedProofKeepsInput(t *testing.T) {
	cases := map[string]func(t *testing.T, values url.Values) *http.Request{
		"phone photo": func(t *testing.T, values url.Values) *http.Request {
			return multipartRequest(t, values, "photo.png", oversizedPNG(6<<20))
		},
		"past body cap": func(t *testing.T, values url.Values) *http.Request {
			return multipartRequest(t, values, "photo.png", oversizedPNG(MAX_BODY_SIZE+1<<20))
		},
		"file sent first": func(t *testing.T, values url.Values) *http.Request {
			return fileFirstRequest(t, values, oversizedPNG(6<<20))
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			token := f.reg.NewToken()

			rec := f.do(t, build(t, validValues(token)))
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := rec.Body.String()
			require.Contains(t, body, "File is too large")
			require.Contains(t, body, `value="Amina Yusuf"`)
			require.Contains(t, body, `value="amina@example.com"`)
			require.Contains(t, body, token)
			require.NotContains(t, body, "Full Name is required")
			require.Zero(t, f.sender.calls())
		})
	}
}

func TestAPICategories(t *testing.T) {
	rec := newFixture(t).get(t, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []competition.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 5)
}
