package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/burntcarrot/threadpad/commons"
	"github.com/burntcarrot/threadpad/thread"
	"github.com/burntcarrot/threadpad/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	// logger is the client's logger, writing to files under ~/.threadpad.
	logger = logrus.New()

	flags Flags
)

func main() {
	// Parse flags.
	flags = parseFlags()

	// Read username.
	name := strings.TrimSpace(flags.Name)
	for name == "" {
		fmt.Printf("%s", color.YellowString("Enter your name: "))
		s := bufio.NewScanner(os.Stdin)
		if !s.Scan() {
			os.Exit(0)
		}
		name = strings.TrimSpace(s.Text())
	}

	logFile, debugLogFile, err := setupLogger(logger)
	if err != nil {
		color.Red("Logger error, exiting: %s", err)
		os.Exit(1)
	}
	defer closeLogFiles(logFile, debugLogFile)

	if flags.Offline {
		run(tui.Config{Username: name, IDs: thread.NewClock(0), Logger: logger}, nil)
		return
	}

	// Get WebSocket connection.
	conn, _, err := createConn(flags)
	if err != nil {
		color.Red("Connection error, exiting: %s", err)
		os.Exit(1)
	}
	defer conn.Close()

	// The server sends the site ID and the thread right away.
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	siteID, f, err := handshake(conn)
	if err != nil {
		color.Red("%s", err)
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	_ = conn.SetReadDeadline(time.Time{})
	logger.Infof("SITE ID %v, %d comments in thread", siteID, thread.Len(f))
	printThread(f)

	// Send joining message.
	msg := commons.Message{Username: name, Text: "has joined the session.", Type: commons.JoinMessage}
	if err := conn.WriteJSON(msg); err != nil {
		color.Red("Connection error, exiting: %s", err)
		os.Exit(1)
	}

	clock := thread.NewClock(siteID)
	clock.Observe(f)

	run(tui.Config{Username: name, IDs: clock, Thread: f, Conn: conn, Logger: logger}, conn)
}

// run starts the UI. Messages read from conn are handed to the UI loop, which
// is the only place the thread is changed.
func run(conf tui.Config, conn *websocket.Conn) {
	p := tea.NewProgram(tui.New(conf), tea.WithAltScreen())

	if conn != nil {
		go readMessages(conn, p)
	}

	if err := p.Start(); err != nil {
		logger.Errorf("UI error: %v", err)
		color.Red("TUI error, exiting: %s", err)
		os.Exit(1)
	}
}

// readMessages reads messages from the WebSocket connection and sends them to the UI.
func readMessages(conn ConnReader, p *tea.Program) {
	for {
		var msg commons.Message

		// Read message.
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("websocket error: %v", err)
			}
			p.Send(tui.ErrMsg(fmt.Errorf("lost connection: %w", err)))
			return
		}

		logger.Infof("message received: %s", msg.Type)
		if msg.Type == commons.DocSyncMessage {
			printThread(msg.Thread)
		}

		p.Send(msg)
	}
}
