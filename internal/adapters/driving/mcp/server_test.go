package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil answer service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingAnswerService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Answer: &mockAnswerService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil answer service returns error", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingAnswerService)
	})

	t.Run("answer only is valid", func(t *testing.T) {
		ports := &Ports{Answer: &mockAnswerService{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Answer:    &mockAnswerService{},
			Retrieval: &mockRetrievalService{},
			Settings:  &mockSettingsService{},
			Prompts:   &mockPromptStore{},
		}
		assert.NoError(t, ports.Validate())
	})
}

func connect(t *testing.T, ports *Ports) *mcp.ClientSession {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err = server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func toolNames(t *testing.T, session *mcp.ClientSession) []string {
	t.Helper()
	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, len(res.Tools))
	for i, tool := range res.Tools {
		names[i] = tool.Name
	}
	return names
}

func TestServer_RegistersTools(t *testing.T) {
	t.Run("answer only", func(t *testing.T) {
		session := connect(t, &Ports{Answer: &mockAnswerService{}})
		assert.ElementsMatch(t, []string{"ask"}, toolNames(t, session))
	})

	t.Run("with retrieval", func(t *testing.T) {
		session := connect(t, &Ports{Answer: &mockAnswerService{}, Retrieval: &mockRetrievalService{}})
		assert.ElementsMatch(t, []string{"ask", "retrieve"}, toolNames(t, session))
	})
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
}

func TestServer_RunHTTPStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.RunHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}
