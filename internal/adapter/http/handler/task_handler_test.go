package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "taskapi/pkg/test"

	"taskapi/internal/adapter/database/sqlite/repository"
	"taskapi/internal/adapter/http/handler"
	"taskapi/internal/adapter/http/routes"
	"taskapi/internal/core/service"
)

type TaskHandlerSuite struct {
	suite.Suite
	Router *gin.Engine
}

func (s *TaskHandlerSuite) SetupTest() {
	db := InitTestDB()
	svc := service.NewTaskService(repository.NewTaskRepository(db, nil), nil)

	s.Router = routes.SetupRouterForTests(routes.HandlersConfig{
		TaskHandler: handler.NewTaskHandler(svc, nil),
	})
}

func TestTaskHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskHandlerSuite))
}

func (s *TaskHandlerSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		Expect(err).To(BeNil())
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any

	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())

	return body
}

func decodeList(w *httptest.ResponseRecorder) []map[string]any {
	var body []map[string]any

	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())

	return body
}

func errorFields(body map[string]any) []string {
	errObj, ok := body["error"].(map[string]any)
	Expect(ok).To(BeTrue())

	items, ok := errObj["errors"].([]any)
	Expect(ok).To(BeTrue())

	fields := []string{}

	for _, item := range items {
		entry := item.(map[string]any)
		fields = append(fields, entry["field"].(string))
	}

	return fields
}

func (s *TaskHandlerSuite) createTask(payload map[string]any) map[string]any {
	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusOK))

	return decodeBody(w)
}

func validPayload() map[string]any {
	return map[string]any{
		"title":    "Write report",
		"priority": 2,
		"due_date": "2030-06-15T12:00:00Z",
	}
}

func (s *TaskHandlerSuite) TestCreateTaskReturnsFullRecord() {
	payload := validPayload()
	payload["description"] = "Q2 numbers"

	body := s.createTask(payload)

	Expect(body["id"]).To(BeNumerically(">", 0))
	Expect(body["title"]).To(Equal("Write report"))
	Expect(body["description"]).To(Equal("Q2 numbers"))
	Expect(body["priority"]).To(BeEquivalentTo(2))
	Expect(body["completed"]).To(BeFalse())
	Expect(body["due_date"]).NotTo(BeEmpty())
}

func (s *TaskHandlerSuite) TestCreateTaskIgnoresClientCompleted() {
	payload := validPayload()
	payload["completed"] = true

	body := s.createTask(payload)

	Expect(body["completed"]).To(BeFalse())
}

func (s *TaskHandlerSuite) TestCreateTaskWithoutTitle() {
	payload := validPayload()
	delete(payload, "title")

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("title"))
}

func (s *TaskHandlerSuite) TestCreateTaskWithEmptyTitle() {
	payload := validPayload()
	payload["title"] = ""

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("title"))
}

func (s *TaskHandlerSuite) TestCreateTaskWithPriorityOutOfRange() {
	payload := validPayload()
	payload["priority"] = 99

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("priority"))
}

func (s *TaskHandlerSuite) TestCreateTaskWithMalformedDueDate() {
	payload := validPayload()
	payload["due_date"] = "next tuesday"

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("due_date"))
}

func (s *TaskHandlerSuite) TestCreateTaskWithZonelessDueDate() {
	payload := validPayload()
	payload["due_date"] = "2030-06-15T12:00:00"

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusOK))
}

func (s *TaskHandlerSuite) TestCreateTaskWithWrongTypeBody() {
	payload := validPayload()
	payload["priority"] = "high"

	w := s.request(http.MethodPost, "/tasks/", payload)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("priority"))
}

func (s *TaskHandlerSuite) TestListTasksDefaultsToTen() {
	for i := 0; i < 12; i++ {
		s.createTask(validPayload())
	}

	w := s.request(http.MethodGet, "/tasks/", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeList(w)).To(HaveLen(10))
}

func (s *TaskHandlerSuite) TestListTasksEmptyStoreReturnsEmptyArray() {
	w := s.request(http.MethodGet, "/tasks/", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(MatchJSON("[]"))
}

func (s *TaskHandlerSuite) TestListTasksCombinesFilters() {
	s.createTask(map[string]any{"title": "Pay rent", "priority": 1, "due_date": "2030-01-01T00:00:00Z"})
	s.createTask(map[string]any{"title": "Pay taxes", "priority": 2, "due_date": "2030-01-01T00:00:00Z"})
	s.createTask(map[string]any{"title": "Water plants", "priority": 2, "due_date": "2030-01-01T00:00:00Z"})

	w := s.request(http.MethodGet, "/tasks/?priority=2&search=PAY", nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	tasks := decodeList(w)

	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0]["title"]).To(Equal("Pay taxes"))
}

func (s *TaskHandlerSuite) TestListTasksFiltersByCompleted() {
	first := s.createTask(validPayload())
	s.createTask(validPayload())

	id := int(first["id"].(float64))
	s.request(http.MethodPut, fmt.Sprintf("/tasks/%d/", id), map[string]any{"completed": true})

	w := s.request(http.MethodGet, "/tasks/?completed=true", nil)

	Expect(w.Code).To(Equal(http.StatusOK))

	tasks := decodeList(w)

	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0]["id"]).To(BeEquivalentTo(id))
}

func (s *TaskHandlerSuite) TestListTasksPagination() {
	for i := 0; i < 15; i++ {
		s.createTask(validPayload())
	}

	w := s.request(http.MethodGet, "/tasks/?skip=10&limit=10", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeList(w)).To(HaveLen(5))
}

func (s *TaskHandlerSuite) TestListTasksRejectsMalformedQuery() {
	for _, query := range []string{
		"completed=maybe",
		"priority=urgent",
		"skip=-1",
		"limit=zero",
	} {
		w := s.request(http.MethodGet, "/tasks/?"+query, nil)

		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity), query)
	}
}

func (s *TaskHandlerSuite) TestGetTask() {
	created := s.createTask(validPayload())
	id := int(created["id"].(float64))

	w := s.request(http.MethodGet, fmt.Sprintf("/tasks/%d/", id), nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeBody(w)["title"]).To(Equal("Write report"))
}

func (s *TaskHandlerSuite) TestGetTaskNotFound() {
	w := s.request(http.MethodGet, "/tasks/999999/", nil)

	Expect(w.Code).To(Equal(http.StatusNotFound))

	errObj := decodeBody(w)["error"].(map[string]any)

	Expect(errObj["code"]).To(Equal("NOT_FOUND"))
	Expect(errObj["errors"].([]any)[0].(map[string]any)["message"]).To(Equal("Task not found"))
}

func (s *TaskHandlerSuite) TestGetTaskWithNonIntegerID() {
	w := s.request(http.MethodGet, "/tasks/abc/", nil)

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("id"))
}

func (s *TaskHandlerSuite) TestUpdateTaskPartial() {
	payload := validPayload()
	payload["description"] = "unchanged"

	created := s.createTask(payload)
	id := int(created["id"].(float64))

	w := s.request(http.MethodPut, fmt.Sprintf("/tasks/%d/", id), map[string]any{
		"title":     "Updated title",
		"completed": true,
	})

	Expect(w.Code).To(Equal(http.StatusOK))

	body := decodeBody(w)

	Expect(body["title"]).To(Equal("Updated title"))
	Expect(body["completed"]).To(BeTrue())
	Expect(body["description"]).To(Equal("unchanged"))
	Expect(body["priority"]).To(BeEquivalentTo(2))
}

func (s *TaskHandlerSuite) TestUpdateTaskWithEmptyBody() {
	created := s.createTask(validPayload())
	id := int(created["id"].(float64))

	w := s.request(http.MethodPut, fmt.Sprintf("/tasks/%d/", id), map[string]any{})

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeBody(w)["title"]).To(Equal("Write report"))
}

func (s *TaskHandlerSuite) TestUpdateTaskRejectsEmptyTitle() {
	created := s.createTask(validPayload())
	id := int(created["id"].(float64))

	w := s.request(http.MethodPut, fmt.Sprintf("/tasks/%d/", id), map[string]any{"title": ""})

	Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	Expect(errorFields(decodeBody(w))).To(ContainElement("title"))
}

func (s *TaskHandlerSuite) TestUpdateTaskNotFound() {
	w := s.request(http.MethodPut, "/tasks/999999/", map[string]any{"title": "X"})

	Expect(w.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDeleteTask() {
	created := s.createTask(validPayload())
	id := int(created["id"].(float64))

	w := s.request(http.MethodDelete, fmt.Sprintf("/tasks/%d/", id), nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeBody(w)["message"]).To(Equal("Task deleted successfully"))

	w = s.request(http.MethodGet, fmt.Sprintf("/tasks/%d/", id), nil)

	Expect(w.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDeleteTaskNotFound() {
	w := s.request(http.MethodDelete, "/tasks/999999/", nil)

	Expect(w.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/healthz", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(decodeBody(w)["status"]).To(Equal("ok"))
}
