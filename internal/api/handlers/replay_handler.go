package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/services/replay"
)

const (
	// 速度1のときのフレーム間隔
	defaultFrameDelay = 2 * time.Second
	pingInterval      = 30 * time.Second
	writeWait         = 10 * time.Second
)

// newUpgrader はHTTP接続をWebSocketプロトコルにアップグレードする設定を返します。
// ブラウザはWebSocketのハンドシェイクにCORSを適用しないため、ここでOriginを確認します。
// Originヘッダーのない接続 (ブラウザ以外のクライアント) は許可します。
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// ReplaySummary はリプレイ一覧の1件です。
type ReplaySummary struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ReplayResponse は1ゲーム分のフレームです。
type ReplayResponse struct {
	Name   string         `json:"name"`
	Frames []replay.Frame `json:"frames"`
}

// ReplayHandler はディレクトリ内のゲームログを一覧・再生するHTTPハンドラーです。
type ReplayHandler struct {
	dir        string
	frameDelay time.Duration
	upgrader   websocket.Upgrader
}

// NewReplayHandler は新しい ReplayHandler を作成します。
//
// Parameters:
//
//	dir            : ゲームログ (.log / .log.zst) を置くディレクトリ
//	allowedOrigins : WebSocket接続を許可するOrigin ("*" ですべて許可)
//
// Returns:
//
//	*ReplayHandler: 新しく作成された ReplayHandler のポインタ
func NewReplayHandler(dir string, allowedOrigins []string) *ReplayHandler {
	return &ReplayHandler{dir: dir, frameDelay: defaultFrameDelay, upgrader: newUpgrader(allowedOrigins)}
}

// RegisterRoutes はルーターにリプレイ関連のエンドポイントを登録します。
func (h *ReplayHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/replays", h.ListReplays).Methods("GET")
	r.HandleFunc("/api/replays/{name}", h.GetReplay).Methods("GET")
	r.HandleFunc("/ws/replays/{name}", h.StreamReplay).Methods("GET")
}

// ListReplays はディレクトリ内のゲームログを名前順で返します。
func (h *ReplayHandler) ListReplays(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[ReplayHandler] Failed to read %s: %v", h.dir, err)
		WriteErrorResponse(w, http.StatusInternalServerError, "リプレイ一覧を取得できませんでした")
		return
	}

	replays := []ReplaySummary{}
	for _, entry := range entries {
		if entry.IsDir() || !isGameLog(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		replays = append(replays, ReplaySummary{Name: entry.Name(), Size: info.Size(), ModifiedAt: info.ModTime()})
	}
	sort.Slice(replays, func(i, j int) bool { return replays[i].Name < replays[j].Name })
	WriteJSONResponse(w, http.StatusOK, replays)
}

// GetReplay は指定されたゲームログを再生し、全フレームをまとめて返します。
func (h *ReplayHandler) GetReplay(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	frames, status, err := h.load(name)
	if err != nil {
		WriteErrorResponse(w, status, err.Error())
		return
	}
	WriteJSONResponse(w, http.StatusOK, ReplayResponse{Name: name, Frames: frames})
}

// StreamReplay はWebSocketでフレームを1つずつ送ります。
// クエリ speed (既定 1) でフレーム間隔を短くできます。
func (h *ReplayHandler) StreamReplay(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	speed := 1.0
	if raw := r.URL.Query().Get("speed"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "speed は正の数で指定してください")
			return
		}
		speed = v
	}
	frames, status, err := h.load(name)
	if err != nil {
		WriteErrorResponse(w, status, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ReplayHandler] Failed to upgrade to websocket for %s: %v", name, err)
		return
	}
	defer conn.Close()
	log.Printf("[ReplayHandler] Streaming %s (%d frames, speed %.2f)", name, len(frames), speed)

	// 制御フレーム (pong, close) を処理するための読み込みループ
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	delay := time.Duration(float64(h.frameDelay) / speed)
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for i, frame := range frames {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("[ReplayHandler] Failed to send frame %d of %s: %v", frame.Round, name, err)
			return
		}
		if i == len(frames)-1 {
			break
		}
		timer := time.NewTimer(delay)
	wait:
		for {
			select {
			case <-timer.C:
				break wait
			case <-ping.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					timer.Stop()
					return
				}
			case <-closed:
				timer.Stop()
				log.Printf("[ReplayHandler] Client left %s at frame %d", name, frame.Round)
				return
			case <-r.Context().Done():
				timer.Stop()
				return
			}
		}
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay finished"))
}

// load はファイル名を検証してゲームログを再生します。失敗時はHTTPステータスも返します。
func (h *ReplayHandler) load(name string) ([]replay.Frame, int, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || !isGameLog(name) {
		return nil, http.StatusBadRequest, errors.New("不正なリプレイ名です")
	}
	rounds, err := replay.Open(filepath.Join(h.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, http.StatusNotFound, errors.New("リプレイが見つかりません")
		}
		log.Printf("[ReplayHandler] Failed to open %s: %v", name, err)
		return nil, http.StatusUnprocessableEntity, errors.New("リプレイを読み込めませんでした")
	}
	return replay.Replay(rounds), http.StatusOK, nil
}

func isGameLog(name string) bool {
	return strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.zst")
}
