package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
)

type browser struct {
	t       *testing.T
	handler http.Handler
	session *http.Cookie
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	t.Helper()

	return &browser{t: t, handler: handler}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	return newTestServer(t).Handler()
}

var testSessionKey = []byte("0123456789abcdef0123456789abcdef")

func (that *browser) do(method, path string) *httptest.ResponseRecorder {
	that.t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if that.session != nil {
		req.AddCookie(that.session)
	}

	rec := httptest.NewRecorder()
	that.handler.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == pkg.SessionCookieName {
			that.session = cookie
		}
	}

	return rec
}

func (that *browser) page() string {
	that.t.Helper()

	rec := that.do(http.MethodGet, "/")
	require.Equal(that.t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func (that *browser) play(cells ...string) {
	that.t.Helper()

	for _, cell := range cells {
		rec := that.do(http.MethodPost, "/move/"+cell)
		require.Equal(that.t, http.StatusSeeOther, rec.Code)
		require.Equal(that.t, "/", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestPing(t *testing.T) {
	b := newBrowser(t, newTestHandler(t))

	rec := b.do(http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestGameHandler_Index(t *testing.T) {
	t.Run("First visit starts a session and a new game", func(t *testing.T) {
		// Given: a browser without a session
		b := newBrowser(t, newTestHandler(t))

		// When: opening the page
		rec := b.do(http.MethodGet, "/")

		// Then: a session cookie should be issued with an empty board
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, b.session)
		assert.True(t, b.session.HttpOnly)
		assert.Equal(t, "/", b.session.Path)
		assert.Equal(t, 3600, b.session.MaxAge)

		body := rec.Body.String()
		assert.Contains(t, body, "Next player: X")
		assert.Contains(t, body, "Go to game start")
		assert.NotContains(t, body, "Go to move #1")
	})

	t.Run("Session keeps its game between requests", func(t *testing.T) {
		b := newBrowser(t, newTestHandler(t))
		b.page()

		b.play("4")

		body := b.page()
		assert.Contains(t, body, `data-cell="4">X</button>`)
		assert.Contains(t, body, "Next player: O")
	})

	t.Run("Forged cookie gets a new session", func(t *testing.T) {
		// Given: a browser sending an unsigned session cookie
		handler := newTestHandler(t)
		owner := newBrowser(t, handler)
		owner.page()
		owner.play("0")

		intruder := newBrowser(t, handler)
		intruder.session = &http.Cookie{Name: pkg.SessionCookieName, Value: "forged"}

		// When: opening the page
		body := intruder.page()

		// Then: a fresh signed session and an empty board should be served
		assert.NotEqual(t, "forged", intruder.session.Value)
		assert.NotContains(t, body, `data-cell="0">X</button>`)
		assert.Contains(t, body, "Next player: X")
	})

	t.Run("Sessions do not share games", func(t *testing.T) {
		handler := newTestHandler(t)
		alice := newBrowser(t, handler)
		bob := newBrowser(t, handler)

		alice.page()
		alice.play("0")

		body := bob.page()
		assert.NotEqual(t, alice.session.Value, bob.session.Value)
		assert.NotContains(t, body, `data-cell="0">X</button>`)
		assert.Contains(t, body, "Next player: X")
	})
}

func TestGameHandler_Move(t *testing.T) {
	t.Run("Winning sequence", func(t *testing.T) {
		// Given: a new game
		b := newBrowser(t, newTestHandler(t))
		b.page()

		// When: X plays the main diagonal
		b.play("0", "1", "4", "2", "8")

		// Then: the page should announce the winner
		body := b.page()
		assert.Contains(t, body, "Winner: X")
		assert.Contains(t, body, "square winning")
		assert.Contains(t, body, "Go to move #5")
	})

	t.Run("Moves after a win are ignored", func(t *testing.T) {
		b := newBrowser(t, newTestHandler(t))
		b.page()
		b.play("0", "1", "4", "2", "8", "5")

		body := b.page()
		assert.NotContains(t, body, "Go to move #6")
		assert.Contains(t, body, `data-cell="5"></button>`)
	})

	t.Run("Occupied cell is ignored", func(t *testing.T) {
		b := newBrowser(t, newTestHandler(t))
		b.page()
		b.play("4", "4")

		body := b.page()
		assert.Contains(t, body, "Next player: O")
		assert.NotContains(t, body, "Go to move #2")
	})

	t.Run("Bad cell parameters", func(t *testing.T) {
		b := newBrowser(t, newTestHandler(t))
		b.page()

		for _, cell := range []string{"abc", "9", "-1"} {
			rec := b.do(http.MethodPost, "/move/"+cell)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "cell %s", cell)
		}
	})
}

func TestGameHandler_Jump(t *testing.T) {
	t.Run("Rewinding keeps the history until the next move", func(t *testing.T) {
		// Given: a game with three moves
		b := newBrowser(t, newTestHandler(t))
		b.page()
		b.play("0", "1", "4")

		// When: jumping back to move #1
		rec := b.do(http.MethodPost, "/jump/1")
		require.Equal(t, http.StatusSeeOther, rec.Code)

		// Then: the board is rewound but later moves are still listed
		body := b.page()
		assert.Contains(t, body, "Next player: O")
		assert.Contains(t, body, "Go to move #3")
		assert.Contains(t, body, `data-cell="4"></button>`)

		// When: O plays from the rewound position
		b.play("8")

		// Then: the abandoned future is discarded
		body = b.page()
		assert.Contains(t, body, "Go to move #2")
		assert.NotContains(t, body, "Go to move #3")
		assert.Contains(t, body, `data-cell="8">O</button>`)
	})

	t.Run("Bad step parameters", func(t *testing.T) {
		b := newBrowser(t, newTestHandler(t))
		b.page()
		b.play("0")

		for _, step := range []string{"x", "2", "-1"} {
			rec := b.do(http.MethodPost, "/jump/"+step)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "step %s", step)
		}
	})
}

func TestGameHandler_Restart(t *testing.T) {
	b := newBrowser(t, newTestHandler(t))
	b.page()
	b.play("0", "1")

	rec := b.do(http.MethodPost, "/restart")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := b.page()
	assert.Contains(t, body, "Next player: X")
	assert.NotContains(t, body, "Go to move #1")
}

func TestStaticAssets(t *testing.T) {
	b := newBrowser(t, newTestHandler(t))

	rec := b.do(http.MethodGet, "/static/style.css")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".square")
}
