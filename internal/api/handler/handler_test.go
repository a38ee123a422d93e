package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/api/validate"
	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	"fleetwave/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.Register(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock DriverService ──

type mockDriverService struct {
	result    *dto.DriverResponse
	list      []dto.DriverResponse
	total     int64
	err       error
	lastQuery *dto.DriverListRequest
}

func (m *mockDriverService) Create(_ context.Context, _ *dto.CreateDriverRequest, _ string) (*dto.DriverResponse, error) {
	return m.result, m.err
}
func (m *mockDriverService) GetByID(_ context.Context, _ string) (*dto.DriverResponse, error) {
	return m.result, m.err
}
func (m *mockDriverService) List(_ context.Context, req *dto.DriverListRequest) ([]dto.DriverResponse, int64, error) {
	m.lastQuery = req
	return m.list, m.total, m.err
}
func (m *mockDriverService) Update(_ context.Context, _ string, _ *dto.UpdateDriverRequest, _ string) (*dto.DriverResponse, error) {
	return m.result, m.err
}
func (m *mockDriverService) SetOnline(_ context.Context, _ string, _ *dto.SetOnlineRequest, _ string) (*dto.DriverResponse, error) {
	return m.result, m.err
}
func (m *mockDriverService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}

// ── Mock RentReportService ──

type mockRentReportService struct {
	result    *dto.RentReportResponse
	list      []dto.RentReportResponse
	err       error
	lastQuery *dto.RentReportListRequest
}

func (m *mockRentReportService) Submit(_ context.Context, _ *dto.SubmitRentReportRequest, _ string) (*dto.RentReportResponse, error) {
	return m.result, m.err
}
func (m *mockRentReportService) MarkLeave(_ context.Context, _ *dto.MarkLeaveRequest, _ string) (*dto.RentReportResponse, error) {
	return m.result, m.err
}
func (m *mockRentReportService) Approve(_ context.Context, _ string, _ string) (*dto.RentReportResponse, error) {
	return m.result, m.err
}
func (m *mockRentReportService) Reject(_ context.Context, _ string, _ *dto.RejectRentReportRequest, _ string) (*dto.RentReportResponse, error) {
	return m.result, m.err
}
func (m *mockRentReportService) ListByDriver(_ context.Context, req *dto.RentReportListRequest) ([]dto.RentReportResponse, error) {
	m.lastQuery = req
	return m.list, m.err
}
func (m *mockRentReportService) GetOwner(_ context.Context, _ string) (string, error) {
	return "", m.err
}

// ── Mock AdjustmentService ──

type mockAdjustmentService struct {
	result *dto.AdjustmentResponse
	list   []dto.AdjustmentResponse
	err    error
}

func (m *mockAdjustmentService) Create(_ context.Context, _ *dto.CreateAdjustmentRequest, _ string) (*dto.AdjustmentResponse, error) {
	return m.result, m.err
}
func (m *mockAdjustmentService) Approve(_ context.Context, _ string, _ string) (*dto.AdjustmentResponse, error) {
	return m.result, m.err
}
func (m *mockAdjustmentService) Reject(_ context.Context, _ string, _ string) (*dto.AdjustmentResponse, error) {
	return m.result, m.err
}
func (m *mockAdjustmentService) ListByReport(_ context.Context, _ string) ([]dto.AdjustmentResponse, error) {
	return m.list, m.err
}

// ── Mock RentStatusService / CalendarService ──

type mockRentStatusService struct {
	calendar *dto.RentCalendarResponse
	day      *dto.DayStatusResponse
	blocking *dto.BlockingResponse
	grid     *dto.FleetGridResponse
	err      error
}

func (m *mockRentStatusService) GetCalendar(_ context.Context, _ string, _ *dto.DateRangeRequest) (*dto.RentCalendarResponse, error) {
	return m.calendar, m.err
}
func (m *mockRentStatusService) GetDayStatus(_ context.Context, _ string, _ string) (*dto.DayStatusResponse, error) {
	return m.day, m.err
}
func (m *mockRentStatusService) GetBlocking(_ context.Context, _ string) (*dto.BlockingResponse, error) {
	return m.blocking, m.err
}
func (m *mockRentStatusService) GetFleetGrid(_ context.Context, _ *dto.DateRangeRequest) (*dto.FleetGridResponse, error) {
	return m.grid, m.err
}
func (m *mockRentStatusService) Invalidate(_ context.Context, _ string) {}

type mockCalendarService struct {
	body     string
	filename string
	err      error
}

func (m *mockCalendarService) DriverDeadlinesICS(_ context.Context, _ string, _ *dto.DateRangeRequest) (string, string, error) {
	return m.body, m.filename, m.err
}

// ── Mock ReminderService / ExportService ──

type mockReminderService struct {
	result *dto.ReminderDispatchResponse
	err    error
}

func (m *mockReminderService) Dispatch(_ context.Context, _ *dto.ReminderDispatchRequest) (*dto.ReminderDispatchResponse, error) {
	return m.result, m.err
}

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRentGrid(_ context.Context, _ *dto.DateRangeRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// 测试辅助
// ═══════════════════════════════════════════════════════════

// newRouter 创建注入身份的测试路由；driverID 仅对司机角色有意义
func newRouter(role, driverID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", role)
		c.Set("driver_id", driverID)
		c.Next()
	})
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// DriverHandler
// ═══════════════════════════════════════════════════════════

func TestDriverHandler_CreateDriver_Success(t *testing.T) {
	mock := &mockDriverService{result: &dto.DriverResponse{ID: "drv-1", Name: "Ravi", Shift: "night"}}
	h := NewDriverHandler(mock)

	r := newRouter("admin", "")
	r.POST("/drivers", h.CreateDriver)
	w := doRequest(r, http.MethodPost, "/drivers", map[string]interface{}{
		"name":         "Ravi",
		"phone":        "+919800000001",
		"shift":        "night",
		"joining_date": "2024-06-01",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("期望 code=0，实际=%d", resp.Code)
	}
}

func TestDriverHandler_CreateDriver_InvalidShift(t *testing.T) {
	h := NewDriverHandler(&mockDriverService{})

	r := newRouter("admin", "")
	r.POST("/drivers", h.CreateDriver)
	w := doRequest(r, http.MethodPost, "/drivers", map[string]interface{}{
		"name":  "Ravi",
		"phone": "+919800000001",
		"shift": "evening",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("未知班次期望 400，实际=%d", w.Code)
	}
}

func TestDriverHandler_CreateDriver_PhoneExists(t *testing.T) {
	h := NewDriverHandler(&mockDriverService{err: service.ErrDriverPhoneExists})

	r := newRouter("admin", "")
	r.POST("/drivers", h.CreateDriver)
	w := doRequest(r, http.MethodPost, "/drivers", map[string]interface{}{
		"name":  "Ravi",
		"phone": "+919800000001",
		"shift": "morning",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("期望 code=20002，实际=%d", resp.Code)
	}
}

func TestDriverHandler_GetDriver_OwnershipCheck(t *testing.T) {
	h := NewDriverHandler(&mockDriverService{result: &dto.DriverResponse{ID: "drv-1"}})

	r := newRouter("driver", "drv-1")
	r.GET("/drivers/:id", h.GetDriver)

	if w := doRequest(r, http.MethodGet, "/drivers/drv-1", nil); w.Code != http.StatusOK {
		t.Errorf("司机查看本人期望 200，实际=%d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/drivers/drv-2", nil); w.Code != http.StatusForbidden {
		t.Errorf("司机查看他人期望 403，实际=%d", w.Code)
	}
}

func TestDriverHandler_ListDrivers_Page(t *testing.T) {
	mock := &mockDriverService{
		list:  []dto.DriverResponse{{ID: "drv-1"}, {ID: "drv-2"}},
		total: 45,
	}
	h := NewDriverHandler(mock)

	r := newRouter("admin", "")
	r.GET("/drivers", h.ListDrivers)
	w := doRequest(r, http.MethodGet, "/drivers?page=2&page_size=20&shift=morning&online=true", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d body=%s", w.Code, w.Body.String())
	}
	if mock.lastQuery == nil || mock.lastQuery.Online == nil || !*mock.lastQuery.Online {
		t.Error("online 过滤参数应被绑定")
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 3 || body.Data.Pagination.Page != 2 {
		t.Errorf("分页信息不符: %+v", body.Data.Pagination)
	}
}

func TestDriverHandler_SetOnline_Unchanged(t *testing.T) {
	h := NewDriverHandler(&mockDriverService{err: service.ErrDriverStatusUnchanged})

	r := newRouter("admin", "")
	r.PUT("/drivers/:id/online", h.SetOnline)
	w := doRequest(r, http.MethodPut, "/drivers/drv-1/online", map[string]interface{}{"online": false})

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20003 {
		t.Errorf("期望 code=20003，实际=%d", resp.Code)
	}
}

func TestDriverHandler_SetOnline_MissingFlag(t *testing.T) {
	h := NewDriverHandler(&mockDriverService{})

	r := newRouter("admin", "")
	r.PUT("/drivers/:id/online", h.SetOnline)
	w := doRequest(r, http.MethodPut, "/drivers/drv-1/online", map[string]interface{}{"effective_date": "2024-06-01"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 online 期望 400，实际=%d", w.Code)
	}
}

func TestDriverHandler_DeleteDriver(t *testing.T) {
	r := newRouter("admin", "")
	h := NewDriverHandler(&mockDriverService{err: service.ErrDriverStillOnline})
	r.DELETE("/drivers/:id", h.DeleteDriver)

	w := doRequest(r, http.MethodDelete, "/drivers/drv-1", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("在线司机删除期望 409，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20004 {
		t.Errorf("期望 code=20004，实际=%d", resp.Code)
	}

	r = newRouter("admin", "")
	r.DELETE("/drivers/:id", NewDriverHandler(&mockDriverService{}).DeleteDriver)
	if w := doRequest(r, http.MethodDelete, "/drivers/drv-1", nil); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RentStatusHandler
// ═══════════════════════════════════════════════════════════

func TestRentStatusHandler_GetCalendar_Success(t *testing.T) {
	mock := &mockRentStatusService{calendar: &dto.RentCalendarResponse{DriverID: "drv-1", OverdueCount: 2}}
	h := NewRentStatusHandler(mock, &mockCalendarService{})

	r := newRouter("driver", "drv-1")
	r.GET("/drivers/:id/rent-calendar", h.GetCalendar)
	w := doRequest(r, http.MethodGet, "/drivers/drv-1/rent-calendar?from=2024-06-01&to=2024-06-07", nil)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
}

func TestRentStatusHandler_GetCalendar_BadDate(t *testing.T) {
	h := NewRentStatusHandler(&mockRentStatusService{}, &mockCalendarService{})

	r := newRouter("admin", "")
	r.GET("/drivers/:id/rent-calendar", h.GetCalendar)
	w := doRequest(r, http.MethodGet, "/drivers/drv-1/rent-calendar?from=06-01-2024", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("非法日期期望 400，实际=%d", w.Code)
	}
}

func TestRentStatusHandler_GetCalendar_InvalidRange(t *testing.T) {
	h := NewRentStatusHandler(&mockRentStatusService{err: service.ErrInvalidDateRange}, &mockCalendarService{})

	r := newRouter("admin", "")
	r.GET("/drivers/:id/rent-calendar", h.GetCalendar)
	w := doRequest(r, http.MethodGet, "/drivers/drv-1/rent-calendar?from=2024-06-10&to=2024-06-01", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际=%d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 23001 || resp.Details == "" {
		t.Errorf("期望 code=23001 且带详情，实际=%+v", resp)
	}
}

func TestRentStatusHandler_GetBlocking_NotFound(t *testing.T) {
	h := NewRentStatusHandler(&mockRentStatusService{err: service.ErrDriverNotFound}, &mockCalendarService{})

	r := newRouter("admin", "")
	r.GET("/drivers/:id/blocking", h.GetBlocking)
	w := doRequest(r, http.MethodGet, "/drivers/missing/blocking", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

func TestRentStatusHandler_GetDeadlinesICS(t *testing.T) {
	cal := &mockCalendarService{body: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", filename: "rent_deadlines_2024-06-01.ics"}
	h := NewRentStatusHandler(&mockRentStatusService{}, cal)

	r := newRouter("driver", "drv-1")
	r.GET("/drivers/:id/deadlines.ics", h.GetDeadlinesICS)
	w := doRequest(r, http.MethodGet, "/drivers/drv-1/deadlines.ics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if !strings.Contains(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("响应体应为 ICS 内容")
	}
}

// ═══════════════════════════════════════════════════════════
// RentReportHandler
// ═══════════════════════════════════════════════════════════

const testDriverUUID = "5f0c8a8e-8a57-4c7a-9a61-0d1c2b3a4e5f"

func TestRentReportHandler_Submit_OtherDriverForbidden(t *testing.T) {
	h := NewRentReportHandler(&mockRentReportService{})

	r := newRouter("driver", "someone-else")
	r.POST("/rent-reports", h.SubmitReport)
	w := doRequest(r, http.MethodPost, "/rent-reports", map[string]interface{}{
		"driver_id": testDriverUUID,
		"rent_date": "2024-06-09",
		"amount":    800,
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际=%d", w.Code)
	}
}

func TestRentReportHandler_Submit_Success(t *testing.T) {
	mock := &mockRentReportService{result: &dto.RentReportResponse{ID: "rpt-1", Status: "pending_verification"}}
	h := NewRentReportHandler(mock)

	r := newRouter("driver", testDriverUUID)
	r.POST("/rent-reports", h.SubmitReport)
	w := doRequest(r, http.MethodPost, "/rent-reports", map[string]interface{}{
		"driver_id": testDriverUUID,
		"rent_date": "2024-06-09",
		"amount":    800,
	})

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRentReportHandler_Submit_Future(t *testing.T) {
	h := NewRentReportHandler(&mockRentReportService{err: service.ErrReportInFuture})

	r := newRouter("admin", "")
	r.POST("/rent-reports", h.SubmitReport)
	w := doRequest(r, http.MethodPost, "/rent-reports", map[string]interface{}{
		"driver_id": testDriverUUID,
		"rent_date": "2030-01-01",
		"amount":    800,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 21003 {
		t.Errorf("期望 code=21003，实际=%d", resp.Code)
	}
}

func TestRentReportHandler_ListReports_StatusFilter(t *testing.T) {
	mock := &mockRentReportService{list: []dto.RentReportResponse{{ID: "rpt-1", Status: "rejected"}}}
	h := NewRentReportHandler(mock)

	r := newRouter("driver", testDriverUUID)
	r.GET("/rent-reports", h.ListReports)

	w := doRequest(r, http.MethodGet, "/rent-reports?driver_id="+testDriverUUID+"&status=rejected", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d body=%s", w.Code, w.Body.String())
	}
	if mock.lastQuery == nil || mock.lastQuery.Status != "rejected" {
		t.Error("status 过滤参数应被绑定")
	}

	w = doRequest(r, http.MethodGet, "/rent-reports?driver_id="+testDriverUUID+"&status=overdue", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非报告状态期望 400，实际=%d", w.Code)
	}
}

func TestRentReportHandler_Approve_InvalidTransition(t *testing.T) {
	h := NewRentReportHandler(&mockRentReportService{err: service.ErrReportInvalidTransition})

	r := newRouter("admin", "")
	r.PUT("/rent-reports/:id/approve", h.ApproveReport)
	w := doRequest(r, http.MethodPut, "/rent-reports/rpt-1/approve", nil)

	if w.Code != http.StatusConflict {
		t.Errorf("期望 409，实际=%d", w.Code)
	}
}

func TestRentReportHandler_Reject_MissingReason(t *testing.T) {
	h := NewRentReportHandler(&mockRentReportService{})

	r := newRouter("admin", "")
	r.PUT("/rent-reports/:id/reject", h.RejectReport)
	w := doRequest(r, http.MethodPut, "/rent-reports/rpt-1/reject", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AdjustmentHandler / ExportHandler / ReminderHandler
// ═══════════════════════════════════════════════════════════

func TestAdjustmentHandler_Create_InvalidType(t *testing.T) {
	h := NewAdjustmentHandler(&mockAdjustmentService{})

	r := newRouter("admin", "")
	r.POST("/adjustments", h.CreateAdjustment)
	w := doRequest(r, http.MethodPost, "/adjustments", map[string]interface{}{
		"report_id": testDriverUUID,
		"type":      "gift",
		"amount":    10,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际=%d", w.Code)
	}
}

func TestAdjustmentHandler_Approve_NotFound(t *testing.T) {
	h := NewAdjustmentHandler(&mockAdjustmentService{err: service.ErrAdjustmentNotFound})

	r := newRouter("admin", "")
	r.PUT("/adjustments/:id/approve", h.ApproveAdjustment)
	w := doRequest(r, http.MethodPut, "/adjustments/adj-1/approve", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

func TestAdjustmentHandler_ListReportAdjustments(t *testing.T) {
	mock := &mockAdjustmentService{list: []dto.AdjustmentResponse{{ID: "adj-1", Type: "bonus"}}}
	r := newRouter("admin", "")
	r.GET("/rent-reports/:id/adjustments", NewAdjustmentHandler(mock).ListReportAdjustments)

	if w := doRequest(r, http.MethodGet, "/rent-reports/rpt-1/adjustments", nil); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}

	mock.err = service.ErrReportNotFound
	if w := doRequest(r, http.MethodGet, "/rent-reports/missing/adjustments", nil); w.Code != http.StatusNotFound {
		t.Errorf("报告不存在期望 404，实际=%d", w.Code)
	}
}

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "rent_grid_2024-06-01_2024-06-07.xlsx",
	}
	h := NewExportHandler(mock)

	r := newRouter("admin", "")
	r.GET("/export/rent-grid", h.ExportRentGrid)
	w := doRequest(r, http.MethodGet, "/export/rent-grid?from=2024-06-01&to=2024-06-07", nil)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "rent_grid_2024-06-01_2024-06-07.xlsx") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
}

func TestExportHandler_NoDrivers(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoDrivers})

	r := newRouter("admin", "")
	r.GET("/export/rent-grid", h.ExportRentGrid)
	w := doRequest(r, http.MethodGet, "/export/rent-grid", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际=%d", w.Code)
	}
}

func TestReminderHandler_Dispatch(t *testing.T) {
	mock := &mockReminderService{result: &dto.ReminderDispatchResponse{Date: "2024-06-10", Published: 3}}
	h := NewReminderHandler(mock)

	r := newRouter("admin", "")
	r.POST("/reminders/dispatch", h.Dispatch)

	if w := doRequest(r, http.MethodPost, "/reminders/dispatch?date=2024-06-10", nil); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/reminders/dispatch?date=yesterday", nil); w.Code != http.StatusBadRequest {
		t.Errorf("非法日期期望 400，实际=%d", w.Code)
	}
}
