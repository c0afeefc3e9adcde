package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aryannaik/quiz-filter/internal/catalog"
	"github.com/aryannaik/quiz-filter/internal/logger"
	"github.com/aryannaik/quiz-filter/internal/search"
)

const bank = `<quiz>
<!-- question:catA -->
<question type="category"><category><text>Geo</text></category></question>
<!-- question: 1 -->
<question type="multichoice">
  <name><text>Capital</text></name>
  <answer><text>Paris</text></answer>
</question>
<!-- question: 2 -->
<question type="matching">
  <name><text>Sum</text></name>
  <subquestion><text>1+1</text><answer><text>2</text></answer></subquestion>
</question>
</quiz>`

func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()
	c := catalog.New()
	mux := NewMux(Config{ExportName: "ExportedQuestions.xml"}, c, logger.Nop())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, c
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestImportRawBody(t *testing.T) {
	ts, c := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/import?name=bank.xml", "application/xml", strings.NewReader(bank))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body importResponse
	decode(t, resp, &body)
	if body.Added != 3 || body.Total != 3 || len(body.Units) != 1 || body.Units[0].Name != "bank.xml" {
		t.Fatalf("unexpected response %+v", body)
	}
	if c.Count() != 3 {
		t.Fatalf("expected 3 records, got %d", c.Count())
	}
}

func TestImportFormEncodedBody(t *testing.T) {
	ts, c := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/import?name=bank.xml", "application/x-www-form-urlencoded", strings.NewReader(bank))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var body importResponse
	decode(t, resp, &body)
	if body.Added != 3 || c.Count() != 3 {
		t.Fatalf("unexpected response %+v", body)
	}
}

func TestImportMultipartWithFailure(t *testing.T) {
	ts, c := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range map[string]string{"good.xml": bank, "bad.xml": "<quiz><question>"} {
		fw, err := mw.CreateFormFile(uploadField, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var body importResponse
	decode(t, resp, &body)
	if body.Added != 3 || len(body.Failures) != 1 || body.Failures[0].Unit != "bad.xml" {
		t.Fatalf("unexpected response %+v", body)
	}
	if c.Count() != 3 {
		t.Fatalf("expected 3 records, got %d", c.Count())
	}
}

func TestImportRejectsEmptyAndWrongMethod(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(""))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/import")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestFilterSelectExportFlow(t *testing.T) {
	ts, c := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(bank))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Post(ts.URL+"/api/filter?q=PARIS", "", nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	var filtered struct {
		Results []search.Result `json:"results"`
		Total   int             `json:"total"`
	}
	decode(t, resp, &filtered)
	if filtered.Total != 1 || filtered.Results[0].Title != "Capital" {
		t.Fatalf("unexpected filter result %+v", filtered)
	}

	// Select the category and the matching question.
	records := c.Records()
	for _, r := range []catalog.Record{records[0], records[2]} {
		payload, _ := json.Marshal(selectRequest{ID: r.ID.String(), Selected: true})
		resp, err := http.Post(ts.URL+"/api/select", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("select status %d", resp.StatusCode)
		}
	}

	resp, err = http.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "ExportedQuestions.xml") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	xml := out.String()
	cat := strings.Index(xml, "<!--question:catA-->")
	sum := strings.Index(xml, "<!--question: 2-->")
	if cat < 0 || sum < 0 || cat > sum {
		t.Fatalf("unexpected export:\n%s", xml)
	}
	if strings.Contains(xml, "question: 1") {
		t.Fatalf("unselected record exported:\n%s", xml)
	}
}

func TestSelectVisibleAndClear(t *testing.T) {
	ts, c := newTestServer(t)
	resp, _ := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(bank))
	resp.Body.Close()
	c.ApplyFilter("sum")

	resp, err := http.Post(ts.URL+"/api/select", "application/json", strings.NewReader(`{"visible":true,"selected":true}`))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var sel map[string]int
	decode(t, resp, &sel)
	if sel["updated"] != 1 {
		t.Fatalf("unexpected select response %v", sel)
	}

	resp, err = http.Post(ts.URL+"/api/clear?mode=unselected", "", nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	var cleared map[string]int
	decode(t, resp, &cleared)
	if cleared["removed"] != 2 || cleared["total"] != 1 {
		t.Fatalf("unexpected clear response %v", cleared)
	}

	resp, err = http.Post(ts.URL+"/api/clear?mode=bogus", "", nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/api/clear?mode=all", "", nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	resp.Body.Close()
	if c.Count() != 0 {
		t.Fatalf("expected empty catalog")
	}
}

func TestDetailAndStatus(t *testing.T) {
	ts, c := newTestServer(t)
	resp, _ := http.Post(ts.URL+"/api/import", "application/xml", strings.NewReader(bank))
	resp.Body.Close()
	id := c.Records()[2].ID

	resp, err := http.Get(ts.URL + "/api/records/detail?id=" + id.String())
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	var detail search.DetailResult
	decode(t, resp, &detail)
	if detail.Detail.Name != "Sum" || len(detail.Detail.Items) != 1 || detail.Record.Token != "question: 2" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	resp, err = http.Get(ts.URL + "/api/records/detail?id=nope")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status statusResponse
	decode(t, resp, &status)
	if status.Total != 3 || status.Categories != 1 || status.Visible != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	resp, err = http.Get(ts.URL + "/api/records?limit=2")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	var list struct {
		Total int `json:"total"`
	}
	decode(t, resp, &list)
	if list.Total != 2 {
		t.Fatalf("expected 2 records, got %d", list.Total)
	}
}
