package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Pipeline progress fan-out for the web viewer. Messages are dropped
// when nobody listens; the pipeline never blocks on a slow client.

const (
	INFO = iota
	ERROR
	PROGRESS
)

type message struct {
	Message  string
	File     string
	Time     time.Time
	Type     int
	Progress float32
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

func NewClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	registerClient(c)
	go c.writePump()
	globalLock.Lock()
	defer globalLock.Unlock()
	if lastMessage != nil {
		c.send <- lastMessage
	}
	return c
}

var broadcast chan *message
var clients map[*client]bool
var globalLock sync.Mutex
var lastMessage []byte
var currentFile string

func registerClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	clients[c] = true
}

func unregisterClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	delete(clients, c)
}

func init() {
	broadcast = make(chan *message, 16)
	clients = make(map[*client]bool)
	go func() {
		for m := range broadcast {
			data, err := json.Marshal(m)
			if err != nil {
				continue
			}
			globalLock.Lock()
			lastMessage = data
			for c := range clients {
				select {
				case c.send <- data:
				default:
				}
			}
			globalLock.Unlock()
		}
	}()
}

// SetFile tags subsequent messages with the input file they concern.
func SetFile(name string) {
	globalLock.Lock()
	defer globalLock.Unlock()
	currentFile = name
}

func post(msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	globalLock.Lock()
	file := currentFile
	globalLock.Unlock()
	m := &message{
		Message:  msg,
		File:     file,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress,
	}
	select {
	case broadcast <- m:
	default:
	}
}

func Info(format string, a ...interface{}) {
	post(fmt.Sprintf(format, a...), INFO, 0.0)
}

func Error(format string, a ...interface{}) {
	post(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func Progress(progress float32, format string, a ...interface{}) {
	post(fmt.Sprintf(format, a...), PROGRESS, progress)
}
