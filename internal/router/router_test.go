package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dollaghosh1/wbpower-project/internal/db"
	"github.com/dollaghosh1/wbpower-project/internal/handler"
	"github.com/dollaghosh1/wbpower-project/internal/repository"
	"github.com/dollaghosh1/wbpower-project/internal/service"
	"github.com/dollaghosh1/wbpower-project/internal/storage"
)

const testSecret = "router-test-secret"

type api struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.OpenSQLite(context.Background(), filepath.Join(dir, "cms.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	files, err := storage.NewLocalStore(filepath.Join(dir, "public"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	authSvc := service.NewAuthService(repository.NewUserRepo(conn), testSecret)
	tableSvc := service.NewTableService(repository.NewTableRepo(conn), "custompost_")
	recordSvc := service.NewRecordService(tableSvc, repository.NewRecordRepo(conn), files)
	if err := authSvc.SeedAdmin(context.Background(), "admin@wbpower.local", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := New(testSecret, "*", Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Tables:    handler.NewTableHandler(tableSvc, "http://localhost:8080"),
		Records:   handler.NewRecordHandler(recordSvc, []string{"updated_at"}, 12<<20),
		Files:     handler.NewFileHandler(files),
		Dashboard: handler.NewDashboardHandler(tableSvc, recordSvc),
	})
	a := &api{t: t, srv: httptest.NewServer(r)}
	t.Cleanup(a.srv.Close)

	var login struct {
		Token string `json:"token"`
	}
	a.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@wbpower.local","password":"admin123"}`, http.StatusOK, &login)
	a.token = login.Token
	return a
}

// do sends a JSON request and decodes the response into out when non-nil.
func (a *api) do(method, path, body string, wantStatus int, out any) {
	a.t.Helper()
	req, _ := http.NewRequest(method, a.srv.URL+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	a.send(req, wantStatus, out)
}

func (a *api) send(req *http.Request, wantStatus int, out any) {
	a.t.Helper()
	if a.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		var b bytes.Buffer
		b.ReadFrom(resp.Body)
		a.t.Fatalf("%s %s: status %d, want %d: %s", req.Method, req.URL.Path, resp.StatusCode, wantStatus, b.String())
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("decode %s: %v", req.URL.Path, err)
		}
	}
}

func TestUnauthorizedRequestsChangeNothing(t *testing.T) {
	a := newAPI(t)
	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+"/api/v1/dynamic-tables",
		strings.NewReader(`{"tableName":"news","fields":{"title":"string"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")
	a.send(req, http.StatusUnauthorized, nil)

	req, _ = http.NewRequest(http.MethodGet, a.srv.URL+"/api/v1/dynamic-tables", nil)
	req.Header.Set("Authorization", "none")
	a.send(req, http.StatusUnauthorized, nil)

	var list struct {
		Tables []string `json:"tables"`
	}
	a.do(http.MethodGet, "/api/v1/dynamic-tables", "", http.StatusOK, &list)
	if len(list.Tables) != 0 {
		t.Errorf("table created without auth: %v", list.Tables)
	}
}

func TestTableLifecycle(t *testing.T) {
	a := newAPI(t)

	var created struct {
		TableName string `json:"tableName"`
	}
	a.do(http.MethodPost, "/api/v1/dynamic-tables",
		`{"table_name":"News","fields":{"Title":"string","Is Featured":"boolean","Cover Image":"file","body":"ckeditor"}}`,
		http.StatusCreated, &created)
	if created.TableName != "custompost_news" {
		t.Fatalf("tableName = %q", created.TableName)
	}
	a.do(http.MethodPost, "/api/v1/dynamic-tables",
		`{"tableName":"news","fields":{"title":"string"}}`, http.StatusConflict, nil)
	a.do(http.MethodPost, "/api/v1/dynamic-tables",
		`{"tableName":"empty","fields":{}}`, http.StatusBadRequest, nil)

	var list struct {
		Tables []string `json:"tables"`
	}
	a.do(http.MethodGet, "/api/v1/dynamic-tables", "", http.StatusOK, &list)
	if len(list.Tables) != 1 || list.Tables[0] != "custompost_news" {
		t.Errorf("tables = %v", list.Tables)
	}

	var form struct {
		Fields []struct {
			Name  string `json:"name"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"fields"`
		AssetBaseURL string `json:"assetBaseUrl"`
	}
	a.do(http.MethodGet, "/api/v1/dynamic-tables/custompost_news/fields", "", http.StatusOK, &form)
	var got []string
	for _, f := range form.Fields {
		got = append(got, f.Name+":"+f.Type)
	}
	want := "title:text,is_featured:checkbox,cover_image:file,body:richtext"
	if strings.Join(got, ",") != want {
		t.Errorf("fields = %v, want %s", got, want)
	}
	if form.AssetBaseURL != "http://localhost:8080" {
		t.Errorf("assetBaseUrl = %q", form.AssetBaseURL)
	}

	var cols struct {
		Columns []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"columns"`
	}
	a.do(http.MethodGet, "/api/v1/dynamic-tables/custompost_news/columns", "", http.StatusOK, &cols)
	if len(cols.Columns) != 8 || cols.Columns[0].Name != "id" || cols.Columns[7].Name != "updated_at" {
		t.Errorf("columns = %+v", cols.Columns)
	}

	a.do(http.MethodGet, "/api/v1/dynamic-tables/custompost_missing/fields", "", http.StatusNotFound, nil)
	a.do(http.MethodGet, "/api/v1/dynamic-tables/users/records", "", http.StatusNotFound, nil)
}

func TestRecordLifecycle(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodPost, "/api/v1/dynamic-tables",
		`{"tableName":"Gallery","fields":{"title":"string","is_featured":"boolean","photo":"file"}}`,
		http.StatusCreated, nil)
	base := "/api/v1/dynamic-tables/custompost_gallery/records"

	// multipart create with a file
	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	mpw.WriteField("_token", "csrf")
	mpw.WriteField("title", "Sunset")
	mpw.WriteField("is_featured", "on")
	fw, _ := mpw.CreateFormFile("photo", "sunset.jpg")
	fw.Write([]byte("jpeg-bytes"))
	mpw.Close()
	req, _ := http.NewRequest(http.MethodPost, a.srv.URL+base, &body)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	var created struct {
		ID int64 `json:"id"`
	}
	a.send(req, http.StatusOK, &created)
	if created.ID == 0 {
		t.Fatal("no id returned")
	}

	var one struct {
		Data map[string]any `json:"data"`
	}
	a.do(http.MethodGet, fmt.Sprintf("%s/%d", base, created.ID), "", http.StatusOK, &one)
	if one.Data["title"] != "Sunset" || one.Data["is_featured"] != true || one.Data["is_active"] != true {
		t.Errorf("record = %v", one.Data)
	}
	photo, _ := one.Data["photo"].(string)
	if !strings.HasPrefix(photo, "uploads/custompost_gallery/photo/") || !strings.HasSuffix(photo, "_sunset.jpg") {
		t.Fatalf("photo path = %q", photo)
	}

	// the stored file is publicly served
	resp, err := http.Get(a.srv.URL + "/" + photo)
	if err != nil {
		t.Fatalf("get upload: %v", err)
	}
	var served bytes.Buffer
	served.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || served.String() != "jpeg-bytes" {
		t.Errorf("served %d %q", resp.StatusCode, served.String())
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content type = %q", ct)
	}

	// JSON create, then merge update via POST
	a.do(http.MethodPost, base, `{"title":"Second"}`, http.StatusOK, &created)
	second := created.ID
	a.do(http.MethodPost, fmt.Sprintf("%s/%d", base, second), `{"is_featured":true}`, http.StatusOK, nil)
	one.Data = nil
	a.do(http.MethodGet, fmt.Sprintf("%s/%d", base, second), "", http.StatusOK, &one)
	if one.Data["title"] != "Second" || one.Data["is_featured"] != true {
		t.Errorf("after update = %v", one.Data)
	}
	a.do(http.MethodPut, base+"/999", `{"title":"x"}`, http.StatusNotFound, nil)
	a.do(http.MethodPost, base, `{"headline":"x"}`, http.StatusBadRequest, nil)

	// list: newest first, updated_at hidden by default
	var list struct {
		Data []map[string]any `json:"data"`
	}
	a.do(http.MethodGet, base, "", http.StatusOK, &list)
	if len(list.Data) != 2 || list.Data[0]["title"] != "Second" {
		t.Fatalf("list = %v", list.Data)
	}
	if _, ok := list.Data[0]["updated_at"]; ok {
		t.Error("updated_at not excluded by default")
	}
	var excluded struct {
		Data []map[string]any `json:"data"`
	}
	a.do(http.MethodGet, base+"?exclude=created_at", "", http.StatusOK, &excluded)
	if len(excluded.Data) != 2 {
		t.Fatalf("excluded list = %v", excluded.Data)
	}
	if _, ok := excluded.Data[0]["created_at"]; ok {
		t.Error("created_at not excluded")
	}
	if _, ok := excluded.Data[0]["updated_at"]; !ok {
		t.Error("updated_at missing with explicit exclude")
	}

	// status toggle and delete
	a.do(http.MethodPut, fmt.Sprintf("%s/%d/status", base, second), `{"is_active":false}`, http.StatusOK, nil)
	one.Data = nil
	a.do(http.MethodGet, fmt.Sprintf("%s/%d", base, second), "", http.StatusOK, &one)
	if one.Data["is_active"] != false {
		t.Errorf("is_active = %v", one.Data["is_active"])
	}
	a.do(http.MethodDelete, fmt.Sprintf("%s/%d", base, second), "", http.StatusOK, nil)
	a.do(http.MethodGet, fmt.Sprintf("%s/%d", base, second), "", http.StatusNotFound, nil)
	a.do(http.MethodGet, base+"/abc", "", http.StatusBadRequest, nil)

	var dash struct {
		TableCount  int `json:"tableCount"`
		RecordCount int `json:"recordCount"`
	}
	a.do(http.MethodGet, "/api/v1/dashboard", "", http.StatusOK, &dash)
	if dash.TableCount != 1 || dash.RecordCount != 1 {
		t.Errorf("dashboard = %+v", dash)
	}
}

func TestAuthEndpoints(t *testing.T) {
	a := newAPI(t)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	a.do(http.MethodGet, "/api/v1/auth/me", "", http.StatusOK, &me)
	if me.Email != "admin@wbpower.local" || me.Role != "admin" {
		t.Errorf("me = %+v", me)
	}

	anon := &api{t: t, srv: a.srv}
	anon.do(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@wbpower.local","password":"wrong"}`, http.StatusUnauthorized, nil)
	anon.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ed@wbpower.local","password":"pw","name":"Ed"}`, http.StatusCreated, nil)
	anon.do(http.MethodPost, "/api/v1/auth/register", `{"email":"ed@wbpower.local","password":"pw","name":"Ed"}`, http.StatusConflict, nil)
}
