package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"backend-hms/internal/config"
	"backend-hms/internal/models"

	"github.com/gofiber/websocket/v2"
)

/*
|--------------------------------------------------------------------------
| Data Structure
|--------------------------------------------------------------------------
*/

type BoardToken struct {
	ID          int64  `json:"id"`
	TokenNumber int    `json:"token_number"`
	DoctorID    int64  `json:"doctor_id"`
	DoctorName  string `json:"doctor_name"`
	Department  string `json:"department"`
	PatientName string `json:"patient_name"`
	Status      string `json:"status"`
}

/*
|--------------------------------------------------------------------------
| WebSocket Client Registry
|--------------------------------------------------------------------------
*/

type ClientInfo struct {
	conn         *websocket.Conn
	writeMux     sync.Mutex
	closeChan    chan struct{}
	closed       bool
	lastPongTime time.Time
	id           string
}

var (
	boardClients   = make(map[*websocket.Conn]*ClientInfo)
	boardMutex     sync.RWMutex
	clientCounter  uint64 // atomic
	cleanupRunning bool

	// Debounce broadcast — a burst of status changes stays one DB query
	broadcastTimer   *time.Timer
	broadcastTimerMu sync.Mutex
	broadcastDelay   = 50 * time.Millisecond

	// Cache last broadcast — valid while the day hasn't rolled over
	lastBroadcastMsg   []byte
	lastBroadcastTime  time.Time
	lastBroadcastMsgMu sync.RWMutex
)

/*
|--------------------------------------------------------------------------
| WebSocket Handler
|--------------------------------------------------------------------------
*/

func QueueBoardWS(c *websocket.Conn) {
	id := atomic.AddUint64(&clientCounter, 1)
	clientID := fmt.Sprintf("board-%d", id)

	client := &ClientInfo{
		conn:         c,
		closeChan:    make(chan struct{}),
		closed:       false,
		lastPongTime: time.Now(),
		id:           clientID,
	}

	log.Printf("[board] %s connecting from %s", clientID, c.RemoteAddr())
	registerClient(c, client)
	defer unregisterClient(c, clientID)

	// Ping/pong handler
	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.SetPongHandler(func(string) error {
		client.writeMux.Lock()
		client.lastPongTime = time.Now()
		client.writeMux.Unlock()
		c.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Initial state for this client only — fresh when the cache is stale
	go func() {
		time.Sleep(100 * time.Millisecond)
		sendToClient(client)
	}()

	// Ping ticker every 20 seconds
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				client.writeMux.Lock()
				if client.closed {
					client.writeMux.Unlock()
					return
				}
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteMessage(websocket.PingMessage, nil)
				client.writeMux.Unlock()

				if err != nil {
					log.Printf("[board] %s ping error: %v", clientID, err)
					return
				}
			case <-client.closeChan:
				return
			}
		}
	}()

	// Read loop
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.Printf("[board] %s unexpected close: %v", clientID, err)
			} else {
				log.Printf("[board] %s closed normally", clientID)
			}
			return
		}
	}
}

// BroadcastQueueUpdate is called after every token write.
// Debounced 50ms — a burst of 10 events still hits the DB once.
func BroadcastQueueUpdate() {
	broadcastTimerMu.Lock()
	defer broadcastTimerMu.Unlock()

	if broadcastTimer != nil {
		broadcastTimer.Reset(broadcastDelay)
		return
	}

	broadcastTimer = time.AfterFunc(broadcastDelay, func() {
		broadcastTimerMu.Lock()
		broadcastTimer = nil
		broadcastTimerMu.Unlock()

		broadcastBoardData()
	})
}

/*
|--------------------------------------------------------------------------
| Client Management
|--------------------------------------------------------------------------
*/

func registerClient(c *websocket.Conn, client *ClientInfo) {
	boardMutex.Lock()
	boardClients[c] = client
	totalClients := len(boardClients)
	startCleanup := !cleanupRunning
	if startCleanup {
		cleanupRunning = true
	}
	boardMutex.Unlock()

	log.Printf("[board] %s registered, total: %d", client.id, totalClients)

	if startCleanup {
		go periodicCleanup()
	}
}

func unregisterClient(c *websocket.Conn, clientID string) {
	boardMutex.Lock()
	client, exists := boardClients[c]
	if exists {
		client.writeMux.Lock()
		if !client.closed {
			client.closed = true
			close(client.closeChan)
		}
		client.writeMux.Unlock()
		delete(boardClients, c)
	}
	totalClients := len(boardClients)
	boardMutex.Unlock()

	_ = c.Close()
	log.Printf("[board] %s unregistered, total: %d", clientID, totalClients)
}

// periodicCleanup drops dead connections every 30 seconds.
func periodicCleanup() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		boardMutex.Lock()
		if len(boardClients) == 0 {
			cleanupRunning = false
			boardMutex.Unlock()
			log.Println("[board] No clients, stopping cleanup goroutine")
			return
		}
		boardMutex.Unlock()

		now := time.Now()
		var toRemove []*websocket.Conn

		boardMutex.RLock()
		for conn, client := range boardClients {
			client.writeMux.Lock()
			stale := now.Sub(client.lastPongTime) > 90*time.Second
			client.writeMux.Unlock()

			if stale {
				log.Printf("[board] %s dead (no pong), marking for removal", client.id)
				toRemove = append(toRemove, conn)
			}
		}
		boardMutex.RUnlock()

		if len(toRemove) == 0 {
			continue
		}

		boardMutex.Lock()
		for _, conn := range toRemove {
			if client, exists := boardClients[conn]; exists {
				client.writeMux.Lock()
				if !client.closed {
					client.closed = true
					close(client.closeChan)
				}
				client.writeMux.Unlock()
				delete(boardClients, conn)
				conn.Close()
				log.Printf("[board] %s cleaned up", client.id)
			}
		}
		log.Printf("[board] Cleaned %d dead clients, remaining: %d", len(toRemove), len(boardClients))
		boardMutex.Unlock()
	}
}

/*
|--------------------------------------------------------------------------
| Broadcast Logic
|--------------------------------------------------------------------------
*/

// getBoardData loads today's active tokens (waiting + in-consultation)
// across all doctors.
func getBoardData() ([]BoardToken, error) {
	rows, err := config.DB.Query(`
		SELECT t.id, t.token_number, t.doctor_id, d.name, dep.name, p.name, t.status
		FROM tokens t
		INNER JOIN doctors d ON t.doctor_id = d.id
		INNER JOIN departments dep ON d.department_id = dep.id
		INNER JOIN patients p ON t.patient_id = p.id
		WHERE t.visit_date = CURDATE()
		AND t.status IN ('waiting', 'in-consultation')
		ORDER BY t.doctor_id ASC, t.token_number ASC, t.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := []BoardToken{}
	for rows.Next() {
		var bt BoardToken
		err := rows.Scan(
			&bt.ID,
			&bt.TokenNumber,
			&bt.DoctorID,
			&bt.DoctorName,
			&bt.Department,
			&bt.PatientName,
			&bt.Status,
		)
		if err != nil {
			continue
		}
		tokens = append(tokens, bt)
	}

	return tokens, nil
}

// buildMessage queries the DB and marshals the payload — used by both
// broadcast and initial data.
func buildMessage() ([]byte, error) {
	tokens, err := getBoardData()
	if err != nil {
		return nil, fmt.Errorf("getBoardData: %w", err)
	}

	summaries, err := queueOverview()
	if err != nil {
		return nil, fmt.Errorf("queueOverview: %w", err)
	}

	var nowServing []BoardToken
	for _, t := range tokens {
		if t.Status == models.StatusInConsultation {
			nowServing = append(nowServing, t)
		}
	}

	payload := map[string]interface{}{
		"type":        "queue_update",
		"tokens":      tokens,
		"now_serving": nowServing,
		"summaries":   summaries,
		"timestamp":   time.Now().Format(time.RFC3339),
	}

	return json.Marshal(payload)
}

// sendToClient pushes current state to one new client.
// Uses the cache while it's still the same calendar day.
func sendToClient(client *ClientInfo) {
	lastBroadcastMsgMu.RLock()
	cached := lastBroadcastMsg
	cacheTime := lastBroadcastTime
	lastBroadcastMsgMu.RUnlock()

	now := time.Now()
	cacheValid := len(cached) > 0 &&
		now.Format("2006-01-02") == cacheTime.Format("2006-01-02")

	if cacheValid {
		writeToClient(client, cached)
		return
	}

	message, err := buildMessage()
	if err != nil {
		log.Printf("[board] sendToClient error: %v", err)
		return
	}
	writeToClient(client, message)
}

// broadcastBoardData sends to every connected client.
func broadcastBoardData() {
	message, err := buildMessage()
	if err != nil {
		log.Printf("[board] broadcastBoardData error: %v", err)
		return
	}

	// Update cache
	lastBroadcastMsgMu.Lock()
	lastBroadcastMsg = message
	lastBroadcastTime = time.Now()
	lastBroadcastMsgMu.Unlock()

	// Snapshot clients
	boardMutex.RLock()
	clients := make([]*ClientInfo, 0, len(boardClients))
	for _, client := range boardClients {
		clients = append(clients, client)
	}
	boardMutex.RUnlock()

	if len(clients) == 0 {
		return
	}

	// Worker pool, max 20 goroutines
	const maxWorkers = 20
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for _, client := range clients {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *ClientInfo) {
			defer wg.Done()
			defer func() { <-sem }()
			writeToClient(c, message)
		}(client)
	}

	wg.Wait()
}

// writeToClient sends one message to one client, handling error cleanup.
func writeToClient(c *ClientInfo, message []byte) {
	c.writeMux.Lock()
	defer c.writeMux.Unlock()

	if c.closed {
		return
	}

	c.conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		log.Printf("[board] %s write error: %v", c.id, err)
		c.closed = true
		select {
		case <-c.closeChan:
		default:
			close(c.closeChan)
		}

		go func(conn *websocket.Conn, id string) {
			boardMutex.Lock()
			delete(boardClients, conn)
			boardMutex.Unlock()
			conn.Close()
			log.Printf("[board] %s removed after write error", id)
		}(c.conn, c.id)
	}
}
