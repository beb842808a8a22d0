package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/hostboard/internal/analysis"
	"github.com/KaramelBytes/hostboard/internal/listings"
	"github.com/KaramelBytes/hostboard/internal/render"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"k8s.io/klog/v2"
)

type option struct {
	Value    string
	Selected bool
}

type link struct {
	Label  string
	Href   string
	Active bool
}

type pageData struct {
	Title         string
	Neighborhoods []option
	Lo, Hi        string
	Min, Max      string
	Rows          string
	Total         string
	Superhost     []link
	HostTypes     []link
	Charts        map[string]string
	Empty         bool

	// active chart selections, carried through the filter form
	SelSuperhost string
	SelHostType  string
}

// params reads the request's filter and selection values against the
// session defaults. A bad value is reported to the client as 400.
func (s *Server) params(w http.ResponseWriter, r *http.Request, sess *session) (analysis.Params, bool) {
	p, err := analysis.ParseQuery(r.URL.Query(), sess.defaults)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrBadParam) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return p, false
	}
	return p, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.store.get(w, r, true)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := s.params(w, r, sess)
	if !ok {
		return
	}
	v := analysis.Compute(sess.table, p)

	data := pageData{
		Title: s.opt.Title,
		Lo:    strconv.FormatFloat(math.Floor(v.Params.Range.Lo*100)/100, 'f', 2, 64),
		Hi:    strconv.FormatFloat(math.Ceil(v.Params.Range.Hi*100)/100, 'f', 2, 64),
		Min:   strconv.FormatFloat(math.Floor(sess.bounds.Lo*100)/100, 'f', 2, 64),
		Max:   strconv.FormatFloat(math.Ceil(sess.bounds.Hi*100)/100, 'f', 2, 64),
		Rows:  humanize.Comma(int64(v.Rows)),
		Total: humanize.Comma(int64(sess.table.Len())),
		Empty: v.Rows == 0,
	}
	for _, n := range analysis.NeighborhoodOptions(sess.table) {
		data.Neighborhoods = append(data.Neighborhoods, option{Value: n, Selected: n == p.Neighborhood})
	}

	sel := p.Query()
	data.SelSuperhost = sel.Get("superhost")
	data.SelHostType = sel.Get("host_type")

	style := sess.table.FlagStyle()
	for _, f := range []listings.Flag{listings.FlagUnknown, listings.FlagTrue, listings.FlagFalse} {
		q := p
		q.Superhost = f
		label := "All"
		if f.Known() {
			label = style.Format(listings.ColSuperhost, f)
		}
		data.Superhost = append(data.Superhost, link{Label: label, Href: "/?" + q.Query().Encode(), Active: p.Superhost == f})
	}
	for _, ht := range append([]listings.HostType{listings.HostTypeUnknown}, listings.HostTypes...) {
		q := p
		q.HostType = ht
		label := "All"
		if ht.Known() {
			label = string(ht)
		}
		data.HostTypes = append(data.HostTypes, link{Label: label, Href: "/?" + q.Query().Encode(), Active: p.HostType == ht})
	}

	qs := p.Query().Encode()
	data.Charts = map[string]string{
		"hosttype": "/charts/hosttype.svg?" + qs,
		"tenure":   "/charts/tenure.svg?" + qs,
		"scatter":  "/charts/scatter.svg?" + qs,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		klog.FromContext(r.Context()).Error(err, "render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	sess := s.store.get(w, r, false)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := s.params(w, r, sess)
	if !ok {
		return
	}
	v := analysis.Compute(sess.table, p)

	var (
		buf bytes.Buffer
		err error
	)
	switch view {
	case "hosttype":
		err = render.HostTypeBars(&buf, v.HostTypeCounts, p.Superhost, sess.table.FlagStyle(), s.opt.Size)
	case "tenure":
		err = render.TenureArea(&buf, v.Tenure, s.opt.Size)
	case "scatter":
		err = render.ReviewScatter(&buf, v.Scatter, s.opt.Size)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		klog.FromContext(r.Context()).Error(err, "render chart", "view", view)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	sess := s.store.get(w, r, false)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, ok := s.params(w, r, sess)
	if !ok {
		return
	}
	v := analysis.Compute(sess.table, p)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.FromContext(r.Context()).Error(err, "encode views")
	}
}
