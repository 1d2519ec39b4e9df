package workspace

import (
	"context"
	"strings"

	"dharmabot/internal/config"
	"dharmabot/internal/domain"
	"dharmabot/internal/domain/models"
	"dharmabot/internal/domain/services"
	domainllm "dharmabot/internal/domain/services/llm"
)

const defaultSessionTitle = "New Chat"

// Sessions returns the chat sessions, most recently updated first.
func (w *Workspace) Sessions() []*models.ChatSession {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*models.ChatSession, len(w.sessions))
	for i, s := range w.sessions {
		out[i] = copySession(s)
	}
	return out
}

// ActiveSession returns the open session, or nil before the first message
// of a new chat.
func (w *Workspace) ActiveSession() *models.ChatSession {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, _ := find(w.sessions, w.activeSessionID)
	return copySession(s)
}

// StartNewSession clears the active session. The session itself is created
// by the first submitted message.
func (w *Workspace) StartNewSession() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activeSessionID = ""
}

// SubmitUserMessage appends the user's message to the active session
// (creating one if needed), asks the gateway for an answer and appends it.
// A gateway failure becomes an "Error: ..." response message rather than an
// error. The returned error is for input, conflict and storage problems.
func (w *Workspace) SubmitUserMessage(ctx context.Context, req *services.SubmitMessageRequest) (*models.ChatSession, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Attachments) == 0 {
		return nil, &domain.ValidationError{Message: "Please enter a message or attach a file."}
	}

	filesInfo := make([]models.FileInfo, 0, len(req.Attachments))
	documents := make([]domainllm.Document, 0, len(req.Attachments))
	names := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		filesInfo = append(filesInfo, models.FileInfo{Name: a.Name, Type: a.MIMEType, Size: a.Size})
		documents = append(documents, domainllm.Document{
			Name:              a.Name,
			MIMEType:          a.MIMEType,
			TextContent:       a.Content,
			ImagePageDataURLs: a.ImagePageDataURLs,
		})
		names = append(names, a.Name)
	}

	w.persistMu.Lock()
	w.mu.Lock()
	now := w.millis()
	session, ok := find(w.sessions, w.activeSessionID)
	if ok && w.pendingSessions[session.ID] {
		w.mu.Unlock()
		w.persistMu.Unlock()
		return nil, busyError("chat_session", session.ID, "A response for this chat")
	}

	// History is what the session held before this message.
	var history []models.ChatMessage
	if ok {
		history = session.History()
	} else {
		title := preview(req.Text, config.SessionTitlePreviewLength)
		if strings.TrimSpace(title) == "" {
			title = defaultSessionTitle
		}
		session = &models.ChatSession{
			ID:        w.newID(),
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
			Messages:  models.Messages{},
		}
		w.sessions = append(w.sessions, session)
		w.activeSessionID = session.ID
		w.logger.Info("chat session created", "session_id", session.ID)
	}

	w.appendMessage(session, &models.UserQueryMessage{
		ID:        w.newID(),
		Timestamp: now,
		QueryText: req.Text,
		FilesInfo: filesInfo,
	})
	snapshot := copySession(session)
	w.pendingSessions[session.ID] = true
	w.mu.Unlock()

	err := w.repos.Sessions.Save(detached(ctx), w.ownerID, snapshot)
	w.persistMu.Unlock()
	if err != nil {
		w.release(session.ID)
		return nil, err
	}

	result, chatErr := w.gateway.Chat(ctx, &domainllm.ChatRequest{
		Query:     req.Text,
		History:   history,
		Documents: documents,
		WebSearch: req.WebSearch,
		Model:     req.Model,
	})

	reply := &models.AIResponseMessage{ID: w.newID()}
	if chatErr != nil {
		w.logger.Error("chat inference failed", "session_id", session.ID, "error", chatErr)
		reply.Text = "Error: Failed to get AI response: " + chatErr.Error()
	} else {
		reply.Text = result.Text
		reply.Sources = result.Sources
		reply.SuggestedTitle = result.SuggestedTitle
		if len(names) > 0 {
			reply.FileName = strings.Join(names, ", ")
		}
	}

	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	delete(w.pendingSessions, session.ID)
	current, stillExists := find(w.sessions, session.ID)
	if !stillExists {
		w.mu.Unlock()
		w.logger.Warn("chat session deleted while awaiting response", "session_id", session.ID)
		return nil, &domain.NotFoundError{Message: "chat session was deleted"}
	}
	reply.Timestamp = w.millis()
	w.appendMessage(current, reply)
	snapshot = copySession(current)
	w.mu.Unlock()

	if err := w.repos.Sessions.Save(detached(ctx), w.ownerID, snapshot); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// appendMessage adds msg, bumps UpdatedAt and re-sorts. Caller holds mu.
func (w *Workspace) appendMessage(session *models.ChatSession, msg models.ChatMessage) {
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = msg.MessageTimestamp()
	sortByRecency(w.sessions)
}

func (w *Workspace) release(sessionID string) {
	w.mu.Lock()
	delete(w.pendingSessions, sessionID)
	w.mu.Unlock()
}

// LoadSession makes the session active.
func (w *Workspace) LoadSession(id string) (*models.ChatSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, ok := find(w.sessions, id)
	if !ok {
		return nil, &domain.NotFoundError{Message: "chat session not found"}
	}
	w.activeSessionID = id
	return copySession(session), nil
}

// RenameSession sets the title and moves the session to the top.
func (w *Workspace) RenameSession(ctx context.Context, id, title string) (*models.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &domain.ValidationError{Message: "Title cannot be empty."}
	}
	if len(title) > config.MaxChatTitleLength {
		return nil, &domain.ValidationError{Message: "Title is too long."}
	}

	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	session, ok := find(w.sessions, id)
	if !ok {
		w.mu.Unlock()
		return nil, &domain.NotFoundError{Message: "chat session not found"}
	}
	session.Title = title
	session.UpdatedAt = w.millis()
	sortByRecency(w.sessions)
	snapshot := copySession(session)
	w.mu.Unlock()

	if err := w.repos.Sessions.Save(detached(ctx), w.ownerID, snapshot); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// DeleteSession removes the session; deleting the active one starts a new chat.
func (w *Workspace) DeleteSession(ctx context.Context, id string) error {
	w.persistMu.Lock()
	defer w.persistMu.Unlock()

	w.mu.Lock()
	w.sessions = remove(w.sessions, id)
	if w.activeSessionID == id {
		w.activeSessionID = ""
	}
	w.mu.Unlock()

	w.logger.Info("chat session deleted", "session_id", id)
	return w.repos.Sessions.Delete(detached(ctx), w.ownerID, id)
}
