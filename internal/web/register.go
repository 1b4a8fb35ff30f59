package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/Geniuskaa/quran_fest/internal/registration"
	"go.uber.org/zap"
)

const (
	// Oversized proofs are skipped, never buffered; the cap bounds how much
	// of a body is read before giving up on it.
	MAX_BODY_SIZE  = 4 * registration.MAX_PROOF_SIZE
	MAX_FIELD_SIZE = 8 << 10
	MAX_PARTS      = 64

	GENERIC_ERROR = "Something went wrong. Please try again or contact us directly."
	RATE_LIMITED  = "Too many registrations from your connection. Please wait a minute and try again."
	CHECK_FIELDS  = "Please correct the highlighted fields."
)

type registerView struct {
	Form        registration.Form
	Errors      registration.Errors
	Banner      string
	Categories  []competition.Category
	PaymentLink string
	StrictRef   bool
	Fee         string
}

func (h *Handler) registerView(f registration.Form, errs registration.Errors, banner string) registerView {
	return registerView{
		Form:        f,
		Errors:      errs,
		Banner:      banner,
		Categories:  competition.Categories(),
		PaymentLink: h.conf.PaymentLink,
		StrictRef:   h.reg.StrictPaymentRef(),
		Fee:         competition.FEE,
	}
}

func (h *Handler) renderForm(writer http.ResponseWriter, status int, f registration.Form, errs registration.Errors, banner string) {
	h.render(writer, status, PAGE_REGISTER, page{
		Title:  "Register",
		Active: "/register",
		Data:   h.registerView(f, errs, banner),
	})
}

func (h *Handler) renderClosed(writer http.ResponseWriter, status int) {
	h.render(writer, status, PAGE_CLOSED, page{Title: "Registration closed", Active: "/register"})
}

func (h *Handler) registerForm(writer http.ResponseWriter, request *http.Request) {
	if !h.reg.Open() {
		h.renderClosed(writer, http.StatusOK)
		return
	}

	f := registration.NewForm(request.URL.Query().Get("category"))
	f.Token = h.reg.NewToken()
	h.renderForm(writer, http.StatusOK, f, nil, "")
}

func (h *Handler) registerSubmit(writer http.ResponseWriter, request *http.Request) {
	sub, err := readSubmission(request)
	f := formFromValues(sub.values)
	if err != nil {
		h.logger.Warn("register form parse failed", zap.Error(err))
		h.renderForm(writer, http.StatusBadRequest, h.reg.Normalize(f), nil, GENERIC_ERROR)
		return
	}

	// A replayed token only needs its confirmation.
	if conf, ok := h.reg.Completed(f.Token); ok {
		h.renderConfirmation(writer, conf)
		return
	}

	if sub.proofErr != nil {
		if !h.reg.Open() {
			h.renderClosed(writer, http.StatusForbidden)
			return
		}
		errs := h.reg.Validate(f).Merge(registration.Errors{
			registration.FIELD_PAYMENT_FILE: registration.ProofMessage(sub.proofErr),
		})
		h.renderForm(writer, http.StatusUnprocessableEntity, h.reg.Normalize(f), errs, CHECK_FIELDS)
		return
	}

	conf, errs, err := h.reg.Submit(request.Context(), clientKey(request), f, sub.proof)
	switch {
	case err == nil:
		h.renderConfirmation(writer, conf)
	case errors.Is(err, registration.ErrClosed):
		h.renderClosed(writer, http.StatusForbidden)
	case errors.Is(err, registration.ErrInvalid):
		h.renderForm(writer, http.StatusUnprocessableEntity, h.reg.Normalize(f), errs, CHECK_FIELDS)
	case errors.Is(err, registration.ErrRateLimited):
		h.renderForm(writer, http.StatusTooManyRequests, h.reg.Normalize(f), nil, RATE_LIMITED)
	case errors.Is(err, registration.ErrInFlight):
		h.renderForm(writer, http.StatusConflict, h.reg.Normalize(f), nil, GENERIC_ERROR)
	default:
		h.renderForm(writer, http.StatusBadGateway, h.reg.Normalize(f), nil, GENERIC_ERROR)
	}
}

func (h *Handler) renderConfirmation(writer http.ResponseWriter, conf *registration.Confirmation) {
	h.render(writer, http.StatusOK, PAGE_CONFIRMATION, page{
		Title:  "Registration Successful",
		Active: "/register",
		Data:   conf,
	})
}

func formFromValues(values url.Values) registration.Form {
	v := values.Get
	return registration.Form{
		FullName:      v("fullName"),
		DateOfBirth:   v("dateOfBirth"),
		Age:           v("age"),
		Gender:        v("gender"),
		Category:      v("category"),
		ParentName:    v("parentName"),
		Phone:         v("phone"),
		Email:         v("email"),
		Address:       v("address"),
		TransactionID: v("transactionId"),
		Notes:         v("notes"),
		Token:         v("token"),
	}
}

var (
	errBodyTooLarge = errors.New("request body too large")
	errTooManyParts = errors.New("too many form parts")
)

// cappedReader fails once limit bytes were read and remembers that it did.
type cappedReader struct {
	r    io.Reader
	left int64
	hit  bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		c.hit = true
		return 0, errBodyTooLarge
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}

type submission struct {
	values   url.Values
	proof    *registration.PaymentFile
	proofErr error
}

// readSubmission streams the form body. Text fields read before the body
// turned out too large are kept, and only the proof is given up.
func readSubmission(request *http.Request) (submission, error) {
	sub := submission{values: url.Values{}}

	capped := &cappedReader{r: request.Body, left: MAX_BODY_SIZE}
	request.Body = struct {
		io.Reader
		io.Closer
	}{capped, request.Body}

	mr, err := request.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := request.ParseForm(); err != nil {
			return sub, fmt.Errorf("ParseForm failed: %w", err)
		}
		sub.values = request.PostForm
		return sub, nil
	}
	if err != nil {
		return sub, fmt.Errorf("MultipartReader failed: %w", err)
	}

	for i := 0; ; i++ {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return sub, nil
		}
		if capped.hit {
			sub.proof, sub.proofErr = nil, registration.ErrTooLarge
			return sub, nil
		}
		if err != nil {
			return sub, fmt.Errorf("NextPart failed: %w", err)
		}
		if i >= MAX_PARTS {
			part.Close()
			return sub, errTooManyParts
		}

		err = sub.read(part)
		part.Close()
		if capped.hit {
			sub.proof, sub.proofErr = nil, registration.ErrTooLarge
			return sub, nil
		}
		if err != nil {
			return sub, err
		}
	}
}

func (s *submission) read(part *multipart.Part) error {
	name := part.FormName()
	if name == "" {
		return nil
	}

	if part.FileName() != "" {
		// Other file fields are drained by the next NextPart call.
		if name == registration.FIELD_PAYMENT_FILE {
			s.proof, s.proofErr = registration.ReadProof(part, part.FileName())
		}
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(part, MAX_FIELD_SIZE))
	if err != nil {
		return fmt.Errorf("read field %s failed: %w", name, err)
	}
	s.values.Add(name, string(data))
	return nil
}

// clientKey is the remote IP; RealIP has already applied forwarding headers.
func clientKey(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
