package api

import (
	"context"
	"net/http"
	"strconv"
)

// Message author kinds as the backend reports them.
const (
	TipoAssistant = "A"
	TipoUser      = "U"
)

// QuickQuestion is a server-suggested follow-up prompt.
type QuickQuestion struct {
	Pergunta string `json:"pergunta"`
}

// MessageRequest is the chat-send body. IDChat nil means a new conversation;
// the field is omitted rather than sent as null so the server can tell "new
// conversation" from "continue conversation 0". Chat id 0 is a valid id.
type MessageRequest struct {
	IDChat   *int   `json:"id_chat,omitempty"`
	Conteudo string `json:"conteudo"`
}

// MessageResponse is the assistant's reply. Optional fields are modeled as
// pointers or zero values and validated by the caller, never trusted.
type MessageResponse struct {
	IDChat           *int            `json:"id_chat"`
	Conteudo         string          `json:"conteudo"`
	Titulo           string          `json:"titulo,omitempty"`
	Tipo             string          `json:"tipo"`
	PerguntasRapidas []QuickQuestion `json:"perguntas_rapidas,omitempty"`
}

// SendMessage posts a chat message and returns the structured reply.
func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, chatPath, ChatTimeout, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type endChatRequest struct {
	IDChat int  `json:"id_chat"`
	Ativo  bool `json:"ativo"`
}

// EndChat deactivates a conversation. Best-effort: callers typically ignore
// the error.
func (c *Client) EndChat(ctx context.Context, idChat int) error {
	return c.doJSON(ctx, http.MethodPut, chatPath, DefaultTimeout, endChatRequest{IDChat: idChat, Ativo: false}, nil)
}

// ChatListItem is one entry of the user's chat history.
type ChatListItem struct {
	Titulo string `json:"titulo"`
	IDChat int    `json:"id_chat"`
	Emoji  string `json:"emoji,omitempty"`
}

type chatListResponse struct {
	Chats []ChatListItem `json:"chats"`
}

// ListChats fetches the user's chat history.
func (c *Client) ListChats(ctx context.Context) ([]ChatListItem, error) {
	var resp chatListResponse
	if err := c.doJSON(ctx, http.MethodGet, chatPath, DefaultTimeout, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// DetailMessage is a transcript entry as the backend returns it.
type DetailMessage struct {
	Conteudo string `json:"conteudo"`
	Tipo     string `json:"tipo"`
}

// ChatDetail is a full historical conversation.
type ChatDetail struct {
	IDChat           *int            `json:"id_chat"`
	PerguntasRapidas []QuickQuestion `json:"perguntas_rapidas,omitempty"`
	Messages         []DetailMessage `json:"messages"`
	Titulo           string          `json:"titulo,omitempty"`
}

// ChatDetails fetches one conversation's transcript.
func (c *Client) ChatDetails(ctx context.Context, idChat int) (*ChatDetail, error) {
	var resp ChatDetail
	path := chatPath + "/" + strconv.Itoa(idChat)
	if err := c.doJSON(ctx, http.MethodGet, path, DefaultTimeout, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
