package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/burntcarrot/threadpad/commons"
	"github.com/burntcarrot/threadpad/thread"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

// Flags represents the command-line flags that are passed to threadpad's client.
type Flags struct {
	Server  string
	Secure  bool
	Name    string
	Offline bool
	Debug   bool
}

// parseFlags parses command-line flags.
func parseFlags() Flags {
	serverAddr := flag.String("server", "localhost:8080", "The network address of the server")
	useSecureConn := flag.Bool("secure", false, "Enable a secure WebSocket connection (wss://)")
	enableDebug := flag.Bool("debug", false, "Enable debugging mode to show more verbose logs")
	name := flag.String("name", "", "The name shown on your comments (prompted for if empty)")
	offline := flag.Bool("offline", false, "Start a local thread without connecting to a server")

	flag.Parse()

	return Flags{
		Server:  *serverAddr,
		Secure:  *useSecureConn,
		Debug:   *enableDebug,
		Name:    *name,
		Offline: *offline,
	}
}

// createConn creates a WebSocket connection.
func createConn(flags Flags) (*websocket.Conn, *http.Response, error) {
	var u url.URL
	if flags.Secure {
		u = url.URL{Scheme: "wss", Host: flags.Server, Path: "/"}
	} else {
		u = url.URL{Scheme: "ws", Host: flags.Server, Path: "/"}
	}

	// Get WebSocket connection.
	dialer := websocket.Dialer{
		HandshakeTimeout: 2 * time.Minute,
	}

	return dialer.Dial(u.String(), nil)
}

// ConnReader is the reading half of a WebSocket connection.
type ConnReader interface {
	ReadJSON(v interface{}) error
}

var ErrHandshake = errors.New("handshake failed")

// handshake waits for the site ID and the current thread, which the server
// sends right after accepting the connection. Other messages are skipped.
func handshake(conn ConnReader) (uint32, thread.Forest, error) {
	var (
		siteID         uint32
		f              thread.Forest
		gotID, gotSync bool
	)

	for !gotID || !gotSync {
		var msg commons.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return 0, nil, fmt.Errorf("%w: %w", ErrHandshake, err)
		}

		switch msg.Type {
		case commons.SiteIDMessage:
			id, err := strconv.ParseUint(msg.Text, 10, 32)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad site ID %q: %w", ErrHandshake, msg.Text, err)
			}
			siteID, gotID = uint32(id), true

		case commons.DocSyncMessage:
			f, gotSync = msg.Thread, true

		default:
			logger.Debugf("skipping %q message during handshake", msg.Type)
		}
	}

	if f == nil {
		f = thread.NewForest()
	}
	return siteID, f, nil
}

// ensureDirExists ensures that a directory exists, and if it isn't present, it tries to create a new one.
func ensureDirExists(path string) (bool, error) {
	// Check if the directory exists
	if _, err := os.Stat(path); err == nil {
		return true, nil
	}

	// Create the directory
	err := os.Mkdir(path, 0700)
	if err != nil {
		return false, err
	}

	return true, nil
}

// setupLogger initializes the client's logger (logrus).
func setupLogger(logger *logrus.Logger) (*os.File, *os.File, error) {
	// define log file paths, based on the home directory.
	logPath := "threadpad.log"
	debugLogPath := "threadpad-debug.log"

	// Get the home directory.
	homeDirExists := true
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDirExists = false
	}

	threadpadDir := filepath.Join(homeDir, ".threadpad")

	dirExists, err := ensureDirExists(threadpadDir)
	if err != nil {
		return nil, nil, err
	}

	// Get log paths based on the home directory.
	if dirExists && homeDirExists {
		logPath = filepath.Join(threadpadDir, "threadpad.log")
		debugLogPath = filepath.Join(threadpadDir, "threadpad-debug.log")
	}

	// Open the log file and create if it does not exist.
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	// Create a separate log file for verbose logs.
	debugLogFile, err := os.OpenFile(debugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) // skipcq: GSC-G302
	if err != nil {
		logFile.Close()
		return nil, nil, fmt.Errorf("open debug log file: %w", err)
	}

	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	if flags.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.AddHook(&writer.Hook{
		Writer: logFile,
		LogLevels: []logrus.Level{
			logrus.WarnLevel,
			logrus.ErrorLevel,
			logrus.FatalLevel,
			logrus.PanicLevel,
		},
	})
	logger.AddHook(&writer.Hook{
		Writer: debugLogFile,
		LogLevels: []logrus.Level{
			logrus.TraceLevel,
			logrus.DebugLevel,
			logrus.InfoLevel,
		},
	})

	return logFile, debugLogFile, nil
}

// closeLogFiles closes the log files created by the client.
// closeLogFiles is meant to be used for defer calls.
func closeLogFiles(logFile, debugLogFile *os.File) {
	if err := logFile.Close(); err != nil {
		fmt.Printf("Failed to close log file: %s", err)
		return
	}

	if err := debugLogFile.Close(); err != nil {
		fmt.Printf("Failed to close debug log file: %s", err)
		return
	}
}

// printThread "prints" the thread state to the logs.
func printThread(f thread.Forest) {
	if flags.Debug {
		logger.Debugf("---THREAD STATE---")
		thread.Walk(f, func(n *thread.Node, depth int) bool {
			logger.Debugf("%sID: %v  author: %s  text: %q  replies: %d", strings.Repeat("  ", depth), n.ID, n.Author, n.Text, len(n.Children))
			return true
		})
	}
}
