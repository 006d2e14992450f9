package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eshop/internal/domain"
	"github.com/shopspring/decimal"
)

type fixedCompleter struct {
	text   string
	err    error
	prompt string
}

func (f *fixedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type catalog []domain.Product

func (c catalog) List(context.Context, string) ([]domain.Product, error) { return c, nil }

type cartAdds struct {
	calls []string
	err   error
}

func (c *cartAdds) Add(_ context.Context, sessionID, productID string, quantity int) error {
	c.calls = append(c.calls, sessionID+"/"+productID+"/"+string(rune('0'+quantity)))
	return c.err
}

var demoCatalog = catalog{{ID: "p-1", Name: "Yoga Mat", Price: decimal.RequireFromString("29.99"), Description: "Non-slip"}}

func TestKeyConfigured(t *testing.T) {
	cases := map[string]bool{
		"":                  false,
		"  ":                false,
		"AIzaSy...replace":  false,
		"AIzaSyRealKey1234": true,
	}
	for key, want := range cases {
		if got := KeyConfigured(key); got != want {
			t.Fatalf("KeyConfigured(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestReplyNotConfigured(t *testing.T) {
	a := NewAssistant(nil, demoCatalog, &cartAdds{}, nil)
	resp := a.Reply(context.Background(), "sess", "hi")
	if resp.Message != notConfiguredReply || len(resp.Actions) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReplyPlainText(t *testing.T) {
	c := &fixedCompleter{text: "We have a great yoga mat."}
	a := NewAssistant(c, demoCatalog, &cartAdds{}, nil)
	resp := a.Reply(context.Background(), "sess", "what do you sell?")
	if resp.Message != "We have a great yoga mat." || len(resp.Actions) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !strings.Contains(c.prompt, "- Yoga Mat (ID: p-1): $29.99 - Non-slip [Link: /products/p-1]") {
		t.Fatalf("prompt missing catalog line:\n%s", c.prompt)
	}
	if !strings.HasSuffix(c.prompt, "User: what do you sell?") {
		t.Fatalf("prompt missing user message")
	}
}

func TestReplyAddToCart(t *testing.T) {
	c := &fixedCompleter{text: `Adding it now! { "action": "add_to_cart", "productId": "p-1", "quantity": 2, "productName": "Yoga Mat" }`}
	cart := &cartAdds{}
	a := NewAssistant(c, demoCatalog, cart, nil)

	resp := a.Reply(context.Background(), "sess", "add two mats")
	if resp.Message != "Adding it now!" {
		t.Fatalf("expected action json stripped, got %q", resp.Message)
	}
	if len(cart.calls) != 1 || cart.calls[0] != "sess/p-1/2" {
		t.Fatalf("unexpected cart calls %v", cart.calls)
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Type != "add_to_cart" || resp.Actions[0].Data["quantity"] != 2 {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
}

func TestReplyAddToCartDefaultsQuantity(t *testing.T) {
	c := &fixedCompleter{text: `{"action":"add_to_cart","productId":"p-1","productName":"Yoga Mat"}`}
	cart := &cartAdds{}
	a := NewAssistant(c, demoCatalog, cart, nil)
	a.Reply(context.Background(), "sess", "add a mat")
	if len(cart.calls) != 1 || cart.calls[0] != "sess/p-1/1" {
		t.Fatalf("unexpected cart calls %v", cart.calls)
	}
}

func TestReplyAddToCartFailureDropsAction(t *testing.T) {
	c := &fixedCompleter{text: `Sure {"action":"add_to_cart","productId":"gone"}`}
	a := NewAssistant(c, demoCatalog, &cartAdds{err: domain.ErrNotFound}, nil)
	resp := a.Reply(context.Background(), "sess", "add it")
	if resp.Message != "Sure" || len(resp.Actions) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReplyNavigate(t *testing.T) {
	c := &fixedCompleter{text: `Here is your cart. {"action": "navigate", "page": "/cart"}`}
	a := NewAssistant(c, demoCatalog, &cartAdds{}, nil)
	resp := a.Reply(context.Background(), "sess", "show cart")
	if len(resp.Actions) != 1 || resp.Actions[0].Type != "navigate" || resp.Actions[0].Data["url"] != "/cart" {
		t.Fatalf("unexpected actions %+v", resp.Actions)
	}
}

func TestReplyMalformedActionIgnored(t *testing.T) {
	c := &fixedCompleter{text: `Oops {"action": add_to_cart}`}
	a := NewAssistant(c, demoCatalog, &cartAdds{}, nil)
	resp := a.Reply(context.Background(), "sess", "x")
	if resp.Message != "Oops" || len(resp.Actions) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReplyCompletionFailure(t *testing.T) {
	a := NewAssistant(&fixedCompleter{err: errors.New("quota")}, demoCatalog, &cartAdds{}, nil)
	resp := a.Reply(context.Background(), "sess", "x")
	if resp.Message != unavailableReply {
		t.Fatalf("expected apology, got %q", resp.Message)
	}
}

func TestExtractAction(t *testing.T) {
	if _, ok := extractAction(`price is {about} 10`); ok {
		t.Fatalf("braces without action must not match")
	}
	if _, ok := extractAction(`} reversed {"action"`); ok {
		t.Fatalf("unbalanced braces must not match")
	}
	got, ok := extractAction(`a {"x":1} b {"action":"navigate","page":"/"} c`)
	if !ok || got != `{"action":"navigate","page":"/"}` {
		t.Fatalf("unexpected extraction %q %v", got, ok)
	}
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" || r.URL.Query().Get("key") != "secret" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		var req geminiRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected body %s", body)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hi "},{"text":"there"}]}}]}`)
	}))
	defer srv.Close()

	g := NewGemini("secret", "gemini-2.5-flash")
	g.baseURL = srv.URL
	text, err := g.Complete(context.Background(), "hello")
	if err != nil || text != "hi there" {
		t.Fatalf("unexpected completion %q %v", text, err)
	}
}

func TestGeminiCompleteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini("secret", "gemini-2.5-flash")
	g.baseURL = srv.URL
	if _, err := g.Complete(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error")
	}
}
