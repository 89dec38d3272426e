package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
)

// fakeSheets records the calls a RowLogger makes against the Sheets API
type fakeSheets struct {
	mu        sync.Mutex
	existing  []string
	headers   bool
	added     []string
	headerSet [][]any
	formatted int
	appended  [][]any
	ranges    []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/v4/spreadsheets/sheet-1":
		ss := sheets.Spreadsheet{Properties: &sheets.SpreadsheetProperties{Title: "Intake"}}
		for i, title := range f.existing {
			ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: int64(i + 1), Title: title}})
		}
		writeJSON(w, ss)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := sheets.BatchUpdateSpreadsheetResponse{}
		for _, q := range req.Requests {
			switch {
			case q.AddSheet != nil:
				f.added = append(f.added, q.AddSheet.Properties.Title)
				f.existing = append(f.existing, q.AddSheet.Properties.Title)
				resp.Replies = append(resp.Replies, &sheets.Response{AddSheet: &sheets.AddSheetResponse{
					Properties: &sheets.SheetProperties{SheetId: int64(len(f.existing)), Title: q.AddSheet.Properties.Title},
				}})
			case q.RepeatCell != nil:
				f.formatted++
			}
		}
		writeJSON(w, resp)

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		vr := sheets.ValueRange{}
		if f.headers {
			vr.Values = [][]any{{"Timestamp"}}
		}
		writeJSON(w, vr)

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.headerSet = vr.Values
		f.headers = true
		writeJSON(w, sheets.UpdateValuesResponse{})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		f.ranges = append(f.ranges, strings.TrimSuffix(strings.TrimPrefix(path, "/v4/spreadsheets/sheet-1/values/"), ":append"))
		assertQuery(r, "valueInputOption", "USER_ENTERED")
		assertQuery(r, "insertDataOption", "INSERT_ROWS")
		writeJSON(w, sheets.AppendValuesResponse{Updates: &sheets.UpdateValuesResponse{UpdatedRows: 1}})

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func assertQuery(r *http.Request, key, want string) {
	if got := r.URL.Query().Get(key); got != want {
		panic(key + "=" + got)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newRowLogger(t *testing.T, fake *fakeSheets) *RowLogger {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewRowLogger(svc, "sheet-1", 0, logger.Nop())
}

func contactSubmission() *model.Submission {
	return model.NewSubmission(&model.Contact{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Subject:     "Engines",
		Message:     "About the analytical engine.",
		InquiryType: "general",
	}, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestAppend_CreatesSheetAndHeadersOnce(t *testing.T) {
	fake := &fakeSheets{}
	rl := newRowLogger(t, fake)

	require.NoError(t, rl.Append(context.Background(), contactSubmission()))
	require.NoError(t, rl.Append(context.Background(), contactSubmission()))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Equal(t, []string{"ContactUs"}, fake.added)
	assert.Equal(t, 1, fake.formatted)
	require.Len(t, fake.headerSet, 1)
	assert.Equal(t, "Timestamp", fake.headerSet[0][0])
	assert.Len(t, fake.headerSet[0], len(layouts[model.KindContact].headers))

	require.Len(t, fake.appended, 2)
	row := fake.appended[0]
	assert.Equal(t, "2025-06-01T12:00:00Z", row[0])
	assert.Equal(t, "Ada", row[1])
	assert.Equal(t, "general", row[7])
	assert.Equal(t, "'ContactUs'!A:A", fake.ranges[0])
}

func TestAppend_ExistingSheetWithHeaders(t *testing.T) {
	fake := &fakeSheets{existing: []string{"Subscriptions"}, headers: true}
	rl := newRowLogger(t, fake)

	sub := model.NewSubmission(&model.Subscription{
		Email:            "sub@example.com",
		SubscriptionType: "newsletter",
		Source:           "footer",
		Interests:        []string{"events", "updates"},
	}, time.Now())
	require.NoError(t, rl.Append(context.Background(), sub))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.added)
	assert.Nil(t, fake.headerSet)
	require.Len(t, fake.appended, 1)
	assert.Equal(t, "events, updates", fake.appended[0][4])
}

func TestAppend_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	svc, err := sheets.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = NewRowLogger(svc, "sheet-1", 0, logger.Nop()).Append(context.Background(), contactSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets: list sheets")
}

func TestSetupAndVerify(t *testing.T) {
	fake := &fakeSheets{}
	rl := newRowLogger(t, fake)

	require.NoError(t, rl.Setup(context.Background()))
	title, err := rl.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Intake", title)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, []string{"Applications", "Career Applications", "ContactUs", "Subscriptions"}, fake.added)
}

func TestRows_ApplicationAndCareer(t *testing.T) {
	app := model.NewSubmission(&model.Application{FirstName: "Grace", OpportunityID: 42, PaymentDone: true}, time.Now())
	app.Upload = &model.UploadResult{FileName: "cv.pdf", ViewLink: "https://drive.example.com/1"}
	row := layouts[model.KindApplication].row(app)
	assert.Len(t, row, len(layouts[model.KindApplication].headers))
	assert.Equal(t, "true", row[15])
	assert.Equal(t, "0", row[16])
	assert.Equal(t, "42", row[17])
	assert.Equal(t, "https://drive.example.com/1", row[21])
	assert.Equal(t, "cv.pdf", row[22])

	career := model.NewSubmission(&model.CareerApplication{AgreeToTerms: true, JobID: 7}, time.Now())
	row = layouts[model.KindCareerApplication].row(career)
	assert.Len(t, row, len(layouts[model.KindCareerApplication].headers))
	assert.Equal(t, "Yes", row[13])
	assert.Equal(t, "No", row[14])
	assert.Equal(t, "", row[18])
}
