package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/othala/internal/peopleservice"
	"github.com/starford/othala/internal/source"
	"github.com/starford/othala/internal/storage"
	"github.com/starford/othala/internal/store"
	"github.com/starford/othala/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider, *store.DB) {
	t.Helper()
	_, files := testutil.TestDataDir(t)
	db := testutil.TestDB(t)
	svc := peopleservice.NewService(source.NewStore(db), db, nil)
	return New(svc, files, db), files, db
}

func seeded(t *testing.T) *Server {
	t.Helper()
	srv, files, db := testServer(t)
	testutil.WriteDataset(t, files, "haverbeke.json", testutil.Haverbekes())
	if err := store.Sync(db, files, testutil.QuietLogger()); err != nil {
		t.Fatal(err)
	}
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_people":
		result, err = srv.listPeople(ctx, req)
	case "get_person":
		result, err = srv.getPerson(ctx, req)
	case "get_dataset_contract":
		result, err = srv.getDatasetContract(ctx, req)
	case "upload_dataset":
		result, err = srv.uploadDataset(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPeople(t *testing.T) {
	srv := seeded(t)

	r := callTool(t, srv, "list_people", map[string]interface{}{
		"sex":       "m",
		"centuries": "19, 20",
		"sort":      "born",
		"order":     "desc",
	})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var res peopleservice.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var got []string
	for _, p := range res.People {
		got = append(got, p.Slug)
	}
	want := "philibert-haverbeke-1907,emile-haverbeke-1877,carolus-haverbeke-1832"
	if strings.Join(got, ",") != want {
		t.Errorf("slugs = %v, want %s", got, want)
	}
}

func TestListPeople_NoData(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "list_people", map[string]interface{}{})
	if r.IsError || resultText(r) != "There are no people on the server" {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestGetPerson(t *testing.T) {
	srv := seeded(t)

	r := callTool(t, srv, "get_person", map[string]interface{}{"slug": "philibert-haverbeke-1907"})
	text := resultText(r)
	if r.IsError || !strings.Contains(text, `"mother": {`) || !strings.Contains(text, "emma-de-milliano-1876") {
		t.Errorf("get_person = %s", text)
	}

	r = callTool(t, srv, "get_person", map[string]interface{}{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing person")
	}

	r = callTool(t, srv, "get_person", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing slug")
	}
}

func TestGetDatasetContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_dataset_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Othala Dataset Format Contract") {
		t.Error("contract text missing")
	}
}

const uploadJSON = `[{"slug":"jane-1900","name":"Jane","sex":"f","born":1900,"died":1980,"motherName":"Mary"},
{"slug":"mary-1870","name":"Mary","sex":"f","born":1870,"died":1940}]`

func TestUploadDataset_DataURI(t *testing.T) {
	srv, files, _ := testServer(t)

	uri := "data:application/json;base64," + base64.StdEncoding.EncodeToString([]byte(uploadJSON))
	r := callTool(t, srv, "upload_dataset", map[string]interface{}{"url": uri, "filename": "../family.json"})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	var res uploadResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if res.SavedPath != "family.json" || res.People != 2 {
		t.Errorf("result = %+v", res)
	}
	if _, err := files.Read("family.json"); err != nil {
		t.Errorf("file not written: %v", err)
	}

	// Imported right away.
	r = callTool(t, srv, "get_person", map[string]interface{}{"slug": "jane-1900"})
	if r.IsError || !strings.Contains(resultText(r), "mary-1870") {
		t.Errorf("jane = %s", resultText(r))
	}

	// Never overwrites.
	r = callTool(t, srv, "upload_dataset", map[string]interface{}{"url": uri, "filename": "family.json"})
	if !r.IsError {
		t.Error("expected error for existing file")
	}
}

func TestUploadDataset_DefaultName(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "upload_dataset", map[string]interface{}{"url": "data:application/json,%5B%5D"})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	var res uploadResult
	_ = json.Unmarshal([]byte(resultText(r)), &res)
	if !strings.HasSuffix(res.SavedPath, ".json") || len(res.SavedPath) != len("00000000-0000-0000-0000-000000000000.json") {
		t.Errorf("saved path = %q, want uuid name", res.SavedPath)
	}
}

func TestUploadDataset_Rejected(t *testing.T) {
	srv, _, _ := testServer(t)

	cases := map[string]map[string]interface{}{
		"invalid records": {"url": "data:application/json," + `[{"slug":"x"}]`},
		"wrong mime":      {"url": "data:image/png;base64,AAAA"},
		"wrong extension": {"url": "data:application/json,%5B%5D", "filename": "people.txt"},
		"bad scheme":      {"url": "ftp://example.com/people.json"},
		"missing url":     {},
	}
	for name, args := range cases {
		if r := callTool(t, srv, "upload_dataset", args); !r.IsError {
			t.Errorf("%s: expected error, got %s", name, resultText(r))
		}
	}
}

func TestUploadDataset_SlugTakenByOtherDataset(t *testing.T) {
	srv := seeded(t)

	payload := `[{"slug":"carolus-haverbeke-1832","name":"Carolus H.","sex":"m","born":1832}]`
	r := callTool(t, srv, "upload_dataset", map[string]interface{}{
		"url":      "data:application/json," + url.PathEscape(payload),
		"filename": "copy.json",
	})
	if !r.IsError || !strings.Contains(resultText(r), "carolus-haverbeke-1832") {
		t.Fatalf("result = %s, want slug clash error", resultText(r))
	}
	if _, err := srv.files.Read("copy.json"); err == nil {
		t.Error("rejected dataset must not be written")
	}
}

func TestUploadDataset_BlocksLoopback(t *testing.T) {
	srv, _, _ := testServer(t)
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("[]"))
	}))
	defer ts.Close()

	r := callTool(t, srv, "upload_dataset", map[string]interface{}{"url": ts.URL + "/people.json"})
	if !r.IsError || !strings.Contains(resultText(r), "loopback") {
		t.Errorf("result = %s, want loopback rejection", resultText(r))
	}
	if hits != 0 {
		t.Error("blocked host must not be contacted")
	}
}

func TestFilenameHelpers(t *testing.T) {
	if got := filenameFromURL("https://example.com/data/people.yaml?x=1", ""); got != "people.yaml" {
		t.Errorf("filenameFromURL = %q", got)
	}
	if got := filenameFromURL("https://example.com/api/people", ".json"); !strings.HasSuffix(got, ".json") || got == "people.json" {
		t.Errorf("filenameFromURL fallback = %q", got)
	}
	if got := sanitizeFilename("../../etc/pass wd.json"); got != "pass_wd.json" {
		t.Errorf("sanitizeFilename = %q", got)
	}
	if got := sanitizeFilename(".hidden.json"); got != "hidden.json" {
		t.Errorf("sanitizeFilename hidden = %q", got)
	}
}
