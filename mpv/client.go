package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSocketPath is the default Unix socket path for mpv IPC.
	DefaultSocketPath = "/tmp/deepfocus-mpv.sock"
	// commandTimeout bounds a single request/response round trip.
	commandTimeout = 2 * time.Second
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialed.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// ErrPropertyUnavailable is mpv's answer for properties that have no value yet
	// (e.g. duration before the stream is loaded).
	ErrPropertyUnavailable = errors.New("mpv: property unavailable")

	requestID uint64
)

type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

type ipcResponse struct {
	Data      interface{} `json:"data"`
	RequestID uint64      `json:"request_id"`
	Error     string      `json:"error"`
	Event     string      `json:"event"`
}

// Client is an mpv JSON IPC client over a Unix socket.
// It is safe for concurrent use; requests are serialized.
type Client struct {
	socketPath string
	conn       net.Conn
	reader     *bufio.Reader
	mu         sync.Mutex
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{socketPath: socketPath}
}

// Connect establishes a connection to the mpv IPC socket.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSocketNotFound, err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// ConnectWithRetry keeps dialing until mpv has created its socket or attempts run out.
func (c *Client) ConnectWithRetry(attempts int, interval time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = c.Connect(); err == nil {
			return nil
		}
		time.Sleep(interval)
	}
	return err
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// GetProperty retrieves the value of an mpv property ("time-pos", "duration", "pause", ...).
func (c *Client) GetProperty(name string) (interface{}, error) {
	return c.sendCommand("get_property", name)
}

// SetProperty sets the value of an mpv property.
func (c *Client) SetProperty(name string, value interface{}) error {
	_, err := c.sendCommand("set_property", name, value)
	return err
}

// GetTimePos returns the current playback position in seconds.
func (c *Client) GetTimePos() (float64, error) {
	return c.getFloat("time-pos")
}

// GetDuration returns the total duration of the video in seconds.
func (c *Client) GetDuration() (float64, error) {
	return c.getFloat("duration")
}

// GetPaused returns true if playback is paused.
func (c *Client) GetPaused() (bool, error) {
	return c.getBool("pause")
}

// GetMute returns true if audio is muted.
func (c *Client) GetMute() (bool, error) {
	return c.getBool("mute")
}

// SetMute mutes or unmutes audio.
func (c *Client) SetMute(muted bool) error {
	return c.SetProperty("mute", muted)
}

// SetPaused pauses or resumes playback.
func (c *Client) SetPaused(paused bool) error {
	return c.SetProperty("pause", paused)
}

// SeekAbsolute seeks to an absolute position in seconds.
func (c *Client) SeekAbsolute(seconds float64) error {
	_, err := c.sendCommand("seek", seconds, "absolute")
	return err
}

func (c *Client) getFloat(name string) (float64, error) {
	result, err := c.GetProperty(name)
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

func (c *Client) getBool(name string) (bool, error) {
	result, err := c.GetProperty(name)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected %s value type: %T", name, result)
	}
	return b, nil
}

// toFloat64 converts a decoded JSON number to float64.
func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// sendCommand writes {"command": [command, args...], "request_id": id} and reads lines
// until the matching response arrives. Event lines are skipped.
func (c *Client) sendCommand(command string, args ...interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}

	cmdArray := make([]interface{}, 0, len(args)+1)
	cmdArray = append(cmdArray, command)
	cmdArray = append(cmdArray, args...)

	reqID := atomic.AddUint64(&requestID, 1)
	data, err := json.Marshal(ipcRequest{Command: cmdArray, RequestID: reqID})
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	if err := c.conn.SetDeadline(time.Now().Add(commandTimeout)); err != nil {
		return nil, fmt.Errorf("mpv: set deadline: %w", err)
	}
	defer c.conn.SetDeadline(time.Time{})

	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("mpv: failed to read response: %w", err)
		}

		var resp ipcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		if resp.Event != "" || resp.RequestID != reqID {
			continue
		}

		switch resp.Error {
		case "", "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, ErrPropertyUnavailable
		default:
			return nil, fmt.Errorf("mpv: %s", resp.Error)
		}
	}
}
