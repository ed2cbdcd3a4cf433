package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raychrisgdp/taskgenie/internal/models"
	"github.com/raychrisgdp/taskgenie/internal/repository"
	"github.com/raychrisgdp/taskgenie/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Task{},
		&models.Attachment{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	repo := repository.NewTaskRepository(suite.db)
	service := services.NewTaskService(repo, nil)
	handler := NewTaskHandler(service)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	suite.router.POST("/tasks", handler.CreateTask)
	suite.router.GET("/tasks", handler.ListTasks)
	suite.router.GET("/tasks/:id", handler.GetTask)
	suite.router.PATCH("/tasks/:id", handler.UpdateTask)
	suite.router.DELETE("/tasks/:id", handler.DeleteTask)
	suite.router.POST("/tasks/:id/attachments", handler.CreateAttachment)
	suite.router.GET("/tasks/:id/attachments", handler.ListAttachments)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var payload map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func (suite *TaskHandlerTestSuite) createTask(title string) string {
	w := suite.request(http.MethodPost, "/tasks", gin.H{"title": title})
	suite.Require().Equal(http.StatusCreated, w.Code)
	return suite.decode(w)["id"].(string)
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	w := suite.request(http.MethodPost, "/tasks", gin.H{
		"title":    "Buy milk",
		"priority": "high",
		"tags":     []string{"errand"},
	})
	suite.Equal(http.StatusCreated, w.Code)

	payload := suite.decode(w)
	suite.NotEmpty(payload["id"])
	suite.Equal("Buy milk", payload["title"])
	suite.Equal("pending", payload["status"])
	suite.Equal("high", payload["priority"])
	suite.Equal(payload["created_at"], payload["updated_at"])
	suite.Equal([]any{"errand"}, payload["tags"])
}

func (suite *TaskHandlerTestSuite) TestCreateTaskValidation() {
	w := suite.request(http.MethodPost, "/tasks", gin.H{"title": ""})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	payload := suite.decode(w)
	suite.Equal("VALIDATION_ERROR", payload["code"])
	suite.NotEmpty(payload["error"])

	w = suite.request(http.MethodPost, "/tasks", gin.H{"title": "x", "status": "done"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTaskMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	id := suite.createTask("Read book")

	w := suite.request(http.MethodGet, "/tasks/"+id, nil)
	suite.Equal(http.StatusOK, w.Code)

	payload := suite.decode(w)
	suite.Equal(id, payload["id"])
	suite.Equal("Read book", payload["title"])
	suite.Equal([]any{}, payload["attachments"])
}

func (suite *TaskHandlerTestSuite) TestGetTaskNotFound() {
	w := suite.request(http.MethodGet, "/tasks/00000000-0000-0000-0000-000000000000", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	payload := suite.decode(w)
	suite.Equal("TASK_NOT_FOUND", payload["code"])
	suite.NotEmpty(payload["error"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	id := suite.createTask("Original")

	w := suite.request(http.MethodPatch, "/tasks/"+id, gin.H{"status": "in_progress"})
	suite.Equal(http.StatusOK, w.Code)

	payload := suite.decode(w)
	suite.Equal("in_progress", payload["status"])
	suite.Equal("Original", payload["title"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskNullTitle() {
	id := suite.createTask("Keep me")

	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+id, bytes.NewBufferString(`{"title":null}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("VALIDATION_ERROR", suite.decode(w)["code"])
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskNotFound() {
	w := suite.request(http.MethodPatch, "/tasks/missing", gin.H{"title": "x"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	id := suite.createTask("Doomed")

	w := suite.request(http.MethodDelete, "/tasks/"+id, nil)
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())

	w = suite.request(http.MethodDelete, "/tasks/"+id, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks() {
	for i := 0; i < 3; i++ {
		suite.createTask(fmt.Sprintf("Task %d", i))
	}

	w := suite.request(http.MethodGet, "/tasks?limit=2", nil)
	suite.Equal(http.StatusOK, w.Code)

	payload := suite.decode(w)
	suite.Equal(float64(3), payload["total"])
	suite.Equal(float64(1), payload["page"])
	suite.Equal(float64(2), payload["page_size"])
	suite.Len(payload["tasks"], 2)
}

func (suite *TaskHandlerTestSuite) TestListTasksFilterValidation() {
	w := suite.request(http.MethodGet, "/tasks?status=done", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/tasks?due_before=tomorrow", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/tasks?limit=abc", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/tasks?limit=0", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/tasks?offset=-1", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasksDueFilter() {
	id := suite.createTask("Due soon")
	eta := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	w := suite.request(http.MethodPatch, "/tasks/"+id, gin.H{"eta": eta})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.createTask("No eta")

	w = suite.request(http.MethodGet, "/tasks?due_before="+time.Now().UTC().Add(48*time.Hour).Format(time.RFC3339), nil)
	suite.Equal(http.StatusOK, w.Code)
	payload := suite.decode(w)
	suite.Equal(float64(1), payload["total"])
}

func (suite *TaskHandlerTestSuite) TestListTasksDueFilterWithOffset() {
	id := suite.createTask("Due at 13Z")
	w := suite.request(http.MethodPatch, "/tasks/"+id, gin.H{"eta": "2025-07-01T13:00:00Z"})
	suite.Require().Equal(http.StatusOK, w.Code)

	// 19:00+07:00 is 12:00Z, before the eta: no match.
	w = suite.request(http.MethodGet, "/tasks?due_before="+url.QueryEscape("2025-07-01T19:00:00+07:00"), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(0), suite.decode(w)["total"])

	// 20:00+07:00 is 13:00Z, equal to the eta: inclusive match.
	w = suite.request(http.MethodGet, "/tasks?due_before="+url.QueryEscape("2025-07-01T20:00:00+07:00"), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), suite.decode(w)["total"])
}

func (suite *TaskHandlerTestSuite) TestAttachments() {
	id := suite.createTask("With links")

	w := suite.request(http.MethodPost, "/tasks/"+id+"/attachments", gin.H{
		"type":      "github",
		"reference": "org/repo#42",
	})
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("github", suite.decode(w)["type"])

	w = suite.request(http.MethodPost, "/tasks/"+id+"/attachments", gin.H{
		"type":      "fax",
		"reference": "nope",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request(http.MethodGet, "/tasks/"+id+"/attachments", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Len(suite.decode(w)["attachments"], 1)
}

func (suite *TaskHandlerTestSuite) TestAttachmentsTaskNotFound() {
	w := suite.request(http.MethodPost, "/tasks/missing/attachments", gin.H{
		"type":      "url",
		"reference": "https://example.com",
	})
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/tasks/missing/attachments", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
