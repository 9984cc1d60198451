package chi

import (
	"net/http"

	"github.com/bazaarhq/listing-search/internal/domain/search/request"
)

// SearchListings handles GET /search/listings.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	p, err := listingsParams(r)
	if err != nil {
		s.handleParamError(w, r, err)
		return
	}
	req, err := request.New(p.filters, p.sortBy, p.page, p.limit, s.search.DefaultLimit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Basic(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, basicToDTO(res))
}

// SearchFacets handles GET /search/facets.
func (s *Server) SearchFacets(w http.ResponseWriter, r *http.Request) {
	f, err := facetsParams(r)
	if err != nil {
		s.handleParamError(w, r, err)
		return
	}

	facets, err := s.search.Facets(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aggregationsToDTO(facets))
}

// AdvancedSearchQuery handles GET /search/advanced.
func (s *Server) AdvancedSearchQuery(w http.ResponseWriter, r *http.Request) {
	p, err := advancedQueryParams(r)
	if err != nil {
		s.handleParamError(w, r, err)
		return
	}
	s.advanced(w, r, p)
}

// AdvancedSearch handles POST /search/advanced.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var body advancedBody
	if !decodeBody(w, r, &body) {
		return
	}
	p, err := body.params(r.Header.Get(viewerHeader))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.advanced(w, r, p)
}

func (s *Server) advanced(w http.ResponseWriter, r *http.Request, p searchParams) {
	req, err := request.New(p.filters, p.sortBy, p.page, p.limit, s.search.DefaultLimit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Advanced(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advancedToDTO(res))
}

// GeoSearch handles POST /search/geo. Sort defaults to distance.
func (s *Server) GeoSearch(w http.ResponseWriter, r *http.Request) {
	var body advancedBody
	if !decodeBody(w, r, &body) {
		return
	}
	p, err := body.params(r.Header.Get(viewerHeader))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if p.sortBy == "" && p.filters.Geo != nil {
		p.sortBy = request.SortDistance
	}

	req, err := request.New(p.filters, p.sortBy, p.page, p.limit, s.search.DefaultLimit())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Geo(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advancedToDTO(res))
}

// Autocomplete handles GET /search/autocomplete. The brand context narrowing
// model suggestions comes as context or brandIds; both are honored.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	b := newQueryBinder(r)
	q := b.str("q")
	brandIDs := append(b.ids("context"), b.ids("brandIds")...)
	if b.err != nil {
		s.handleParamError(w, r, b.err)
		return
	}

	sg, err := s.search.Autocomplete(r.Context(), q, brandIDs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsToDTO(sg))
}

// LocationAutocomplete handles GET /locations/autocomplete.
func (s *Server) LocationAutocomplete(w http.ResponseWriter, r *http.Request) {
	b := newQueryBinder(r)
	q := b.str("q")
	limit := b.int("limit")
	if b.err != nil {
		s.handleParamError(w, r, b.err)
		return
	}

	n := 0
	if limit != nil {
		if *limit < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Code: ErrorCodeValidationFailed, Message: "must be at least 1", Field: "limit",
			})
			return
		}
		n = *limit
	}
	res := s.locations.Autocomplete(r.Context(), q, n)
	writeJSON(w, http.StatusOK, locationsToDTO(res))
}
