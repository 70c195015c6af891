package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grievanceportal/internal/cache"
	"grievanceportal/internal/catalog"
	"grievanceportal/internal/classifier"
	"grievanceportal/internal/model"
	"grievanceportal/internal/service"
	"grievanceportal/internal/testutil"
	"grievanceportal/internal/wizard"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatedClassifier struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedClassifier) Classify(context.Context, string, string, string, string) classifier.Classification {
	g.entered <- struct{}{}
	<-g.release
	return classifier.Classification{Priority: model.PriorityLow}
}

type wsFixture struct {
	server     *httptest.Server
	handler    *Handler
	intake     *service.IntakeService
	auth       *service.AuthService
	complaints *service.ComplaintService
	hub        *Hub
}

func newWSFixture(t *testing.T, cls *gatedClassifier) *wsFixture {
	t.Helper()
	_, rdb := testutil.NewRedis(t)
	hub := NewHub(nil)

	auth := service.NewAuthService(testutil.NewMockUserRepo(), "ws-secret", time.Hour, nil)
	complaints := service.NewComplaintService(cache.NewComplaintStore(rdb, time.Hour), cache.NewAnalyticsCache(rdb), hub, nil, nil)
	var classify wizard.Classifier
	if cls != nil {
		classify = cls
	}
	intake := service.NewIntakeService(catalog.MustDefault(), classify, cache.NewSessionCache(rdb, time.Hour), complaints, nil, nil)
	h := NewHandler(hub, auth, intake, complaints, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/intake", h.IntakeWS)
	mux.HandleFunc("/feed", h.FeedWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &wsFixture{server: srv, handler: h, intake: intake, auth: auth, complaints: complaints, hub: hub}
}

func (f *wsFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readEntry(t *testing.T, conn *websocket.Conn) model.TranscriptEntry {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MsgTranscriptEntry, msg.Type, string(msg.Payload))
	var entry model.TranscriptEntry
	require.NoError(t, json.Unmarshal(msg.Payload, &entry))
	return entry
}

func answerMessage(t *testing.T, text string) []byte {
	t.Helper()
	payload, err := json.Marshal(answerPayload{Text: text})
	require.NoError(t, err)
	raw, err := json.Marshal(Message{Type: CmdAnswer, Payload: payload})
	require.NoError(t, err)
	return raw
}

func sendAnswer(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, answerMessage(t, text)))
}

func nextQueued(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case raw := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message queued")
		return Message{}
	}
}

func TestIntakeWS_Conversation(t *testing.T) {
	f := newWSFixture(t, nil)
	conn := f.dial(t, "/intake?department=jal-board&lang=en")

	first := readEntry(t, conn)
	assert.Equal(t, model.EntryPrompt, first.Kind)
	assert.Equal(t, "name", first.QuestionID)

	sendAnswer(t, conn, "ab")
	msg := readMessage(t, conn)
	assert.Equal(t, MsgValidationError, msg.Type)
	assert.Contains(t, string(msg.Payload), `"questionId":"name"`)

	sendAnswer(t, conn, "Asha Verma")
	assert.Equal(t, model.EntryAnswer, readEntry(t, conn).Kind)
	next := readEntry(t, conn)
	assert.Equal(t, "phone", next.QuestionID)

	require.NoError(t, conn.WriteJSON(Message{Type: CmdRestart}))
	msg = readMessage(t, conn)
	require.Equal(t, MsgSessionRestarted, msg.Type)
	var transcript model.Transcript
	require.NoError(t, json.Unmarshal(msg.Payload, &transcript))
	assert.Len(t, transcript, 1)

	require.NoError(t, conn.WriteJSON(Message{Type: "dance"}))
	assert.Equal(t, MsgError, readMessage(t, conn).Type)
}

func TestChatSession_AppliesAnswersInArrivalOrder(t *testing.T) {
	f := newWSFixture(t, nil)

	for i := 0; i < 200; i++ {
		chat, err := f.intake.OpenChat("jal-board", "en")
		require.NoError(t, err)
		conn := NewConnection("")
		ctx, cancel := context.WithCancel(context.Background())
		s := newChatSession(ctx, f.handler, chat, conn)
		go s.run()

		s.handle(answerMessage(t, "Ramesh Kumar"))
		s.handle(answerMessage(t, "9876543210"))
		for j := 0; j < 4; j++ {
			require.Equal(t, MsgTranscriptEntry, nextQueued(t, conn).Type)
		}
		cancel()

		responses := chat.Responses()
		require.Len(t, responses, 2)
		require.Equal(t, "Ramesh Kumar", responses.Value("name"), "run %d", i)
		require.Equal(t, "9876543210", responses.Value("phone"), "run %d", i)
	}
}

func TestIntakeWS_BackToBackAnswers(t *testing.T) {
	f := newWSFixture(t, nil)
	conn := f.dial(t, "/intake?department=jal-board&lang=en")
	readEntry(t, conn)

	sendAnswer(t, conn, "Ramesh Kumar")
	sendAnswer(t, conn, "9876543210")

	first := readEntry(t, conn)
	assert.Equal(t, model.EntryAnswer, first.Kind)
	assert.Equal(t, "Ramesh Kumar", first.Text)
	assert.Equal(t, "phone", readEntry(t, conn).QuestionID)
	second := readEntry(t, conn)
	assert.Equal(t, model.EntryAnswer, second.Kind)
	assert.Equal(t, "9876543210", second.Text)
	assert.Equal(t, "district", readEntry(t, conn).QuestionID)
}

func TestIntakeWS_RejectsUnknownDepartment(t *testing.T) {
	f := newWSFixture(t, nil)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/intake?department=roads"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIntakeWS_BusyWhileClassifying(t *testing.T) {
	cls := &gatedClassifier{entered: make(chan struct{}, 1), release: make(chan struct{})}
	f := newWSFixture(t, cls)
	conn := f.dial(t, "/intake?department=jal-board&lang=en")
	readEntry(t, conn)

	answers := []string{"Asha Verma", "9876543210", "Lucknow", "226001", "12 Hazratganj, near GPO",
		"Water Leakage", "Few Days", "pipe burst near the market", "Morning (9AM-12PM)", "", ""}
	for _, a := range answers {
		sendAnswer(t, conn, a)
		readEntry(t, conn) // answer
		readEntry(t, conn) // next prompt
	}

	sendAnswer(t, conn, "")
	select {
	case <-cls.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("classifier was not called")
	}

	sendAnswer(t, conn, "asha@example.in")
	assert.Equal(t, MsgBusy, readMessage(t, conn).Type)

	close(cls.release)
	assert.Equal(t, model.EntryAnswer, readEntry(t, conn).Kind)
	completion := readEntry(t, conn)
	assert.Equal(t, model.EntryCompletion, completion.Kind)
	require.NotNil(t, completion.Record)
	assert.Equal(t, model.PriorityLow, completion.Record.Priority)
}

func TestFeedWS(t *testing.T) {
	f := newWSFixture(t, nil)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/feed"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := f.auth.GenerateToken("staff-1")
	require.NoError(t, err)
	conn := f.dial(t, "/feed?token="+token)

	msg := readMessage(t, conn)
	require.Equal(t, MsgRecentComplaints, msg.Type)
	assert.JSONEq(t, `[]`, string(msg.Payload))

	now := time.Now()
	rec := &model.CompletionRecord{ID: "JB424242XYZ", Department: "jal-board", Priority: model.PriorityHigh,
		Status: model.StatusRegistered, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.complaints.File(context.Background(), rec))

	msg = readMessage(t, conn)
	require.Equal(t, MsgComplaintFiled, msg.Type)
	var got model.CompletionRecord
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Equal(t, "JB424242XYZ", got.ID)
	assert.Equal(t, 1, f.hub.Count())
}
