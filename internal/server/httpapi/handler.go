package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxUploadMemory = 32 << 20
	maxUploadBytes  = 64 << 20
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

type loginRequest struct {
	CompanyID models.OptionalID `json:"id_empresa"`
	Email     string            `json:"email"`
	Password  string            `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	verr := &services.ValidationError{Message: "The given data was invalid."}
	if !req.CompanyID.Valid {
		verr.Fields = map[string][]string{"id_empresa": {"company is required"}}
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		if verr.Fields == nil {
			verr.Fields = map[string][]string{}
		}
		verr.Fields["email"] = []string{"email and password are required"}
	}
	if verr.Fields != nil {
		s.writeError(w, r, verr)
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	token, err := s.users.Login(r.Context(), req.CompanyID.Value, req.Email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.requestLogger(r.Context()).Info(r.Context(), "Logged in", "company", req.CompanyID.Value, "email", req.Email)
	writeJSON(w, http.StatusOK, dataResponse{Data: map[string]string{"token": token, "token_type": "bearer"}})
}

type searchRequest struct {
	IncludeImages bool   `json:"include_images"`
	PerPage       int    `json:"per_page"`
	Page          int    `json:"page"`
	Q             string `json:"q"`
}

type searchPage struct {
	Data        []models.Product `json:"data"`
	CurrentPage int              `json:"current_page"`
	PerPage     int              `json:"per_page"`
	NextPageURL *string          `json:"next_page_url"`
}

func (s *Server) searchProduct(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	res, err := s.products.Search(r.Context(), claims.CompanyID, services.SearchParams{
		Query:         req.Q,
		Page:          req.Page,
		PerPage:       req.PerPage,
		IncludeImages: req.IncludeImages,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := searchPage{Data: res.Products, CurrentPage: res.Page, PerPage: res.PerPage}
	if page.Data == nil {
		page.Data = []models.Product{}
	}
	if res.HasNext {
		next := pageURL(r, res.Page+1)
		page.NextPageURL = &next
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: page})
}

// pageURL points at page n of the current endpoint.
func pageURL(r *http.Request, n int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: "page=" + strconv.Itoa(n)}
	return u.String()
}

type filterRequest struct {
	PageNum      int `json:"pagenum"`
	PageSize     int `json:"pagesize"`
	FiltersCount int `json:"filterscount"`
	FilterGroups []struct {
		Field   string `json:"field"`
		Filters []struct {
			Value     string `json:"value"`
			Condition string `json:"condition"`
			Field     string `json:"field"`
		} `json:"filters"`
	} `json:"filterGroups"`
}

func (s *Server) searchFilterProduct(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	params := services.FilterParams{PageNum: req.PageNum, PageSize: req.PageSize}
	for _, g := range req.FilterGroups {
		if len(g.Filters) == 0 {
			continue
		}
		f := g.Filters[0]
		if c := strings.ToUpper(f.Condition); c != "" && c != "CONTAINS" {
			s.writeError(w, r, &services.ValidationError{
				Message: "The given data was invalid.",
				Fields:  map[string][]string{"condition": {fmt.Sprintf("unsupported condition %q", f.Condition)}},
			})
			return
		}
		params.Field = g.Field
		if params.Field == "" {
			params.Field = f.Field
		}
		params.Value = f.Value
		break
	}

	claims := claimsFromContext(r.Context())
	list, err := s.products.FilterSearch(r.Context(), claims.CompanyID, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": list})
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	c, err := s.products.Catalog(r.Context(), claims.CompanyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: c})
}

func (s *Server) updateOrCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	saved, err := s.products.UpdateOrCreate(r.Context(), claims.CompanyID, &p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.requestLogger(r.Context()).Info(r.Context(), "Product saved", "id", saved.ID, "reference", saved.Reference)
	writeJSON(w, http.StatusOK, dataResponse{Data: saved})
}

var filePartName = regexp.MustCompile(`^file(?:\[(\d+)\])?$`)

func (s *Server) saveImages(w http.ResponseWriter, r *http.Request) {
	productID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, r, &services.ValidationError{Message: "malformed multipart body: " + err.Error()})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := readUploads(r.MultipartForm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	claims := claimsFromContext(r.Context())
	saved, err := s.products.SaveImages(r.Context(), claims.CompanyID, productID, files, r.FormValue("save_location"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.requestLogger(r.Context()).Info(r.Context(), "Images saved", "product", productID, "count", len(saved))
	writeJSON(w, http.StatusOK, dataResponse{Data: saved})
}

// readUploads returns the file[N] parts ordered by N.
func readUploads(form *multipart.Form) ([]services.UploadedImage, error) {
	type indexed struct {
		n int
		h *multipart.FileHeader
	}
	var parts []indexed
	for name, headers := range form.File {
		m := filePartName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		for _, h := range headers {
			parts = append(parts, indexed{n, h})
		}
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	out := make([]services.UploadedImage, 0, len(parts))
	for _, p := range parts {
		f, err := p.h.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p.h.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p.h.Filename, err)
		}
		out = append(out, services.UploadedImage{
			Name:        p.h.Filename,
			ContentType: p.h.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := s.pathID(w, r)
	if !ok {
		return
	}

	claims := claimsFromContext(r.Context())
	if err := s.products.DeleteImage(r.Context(), claims.CompanyID, imageID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Image deleted.")
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, &services.ValidationError{
			Message: "The given data was invalid.",
			Fields:  map[string][]string{"id": {"id must be a positive integer"}},
		})
		return 0, false
	}
	return id, true
}
