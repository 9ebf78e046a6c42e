package whatsapp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/mattn/go-sqlite3"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
)

// ErrNotConnected is returned by sends before the client reports ready.
var ErrNotConnected = errors.New("whatsapp client not connected")

const eventBuffer = 32

// relinkDelay spaces out pairing attempts so a persistent failure does not
// spin.
var relinkDelay = 2 * time.Second

// Options configures a Client.
type Options struct {
	// DBPath is the session artifact. It is created on first login.
	DBPath string
	// SendRPS caps outgoing messages per second. Zero disables the cap.
	SendRPS float64
	// QRWriter receives a terminal rendering of each login challenge.
	// Nil disables rendering; the challenge is still emitted as an event.
	QRWriter io.Writer
	Logger   *zap.Logger
}

// Client is a chat.Adapter backed by the WhatsApp multi-device protocol.
// Its whole login state lives in the SQLite file at Options.DBPath.
type Client struct {
	opts    Options
	log     *zap.Logger
	limiter *rate.Limiter

	db        *sql.DB
	container *sqlstore.Container
	wa        *whatsmeow.Client

	events chan chat.Event
	ready  atomic.Bool

	// ctx lives until Close and bounds QR channels and relink attempts.
	ctx    context.Context
	cancel context.CancelFunc
	// relink restarts pairing on a fresh device. Swapped in tests.
	relink func(reason string, loggedOut bool)

	mu        sync.Mutex
	closed    bool
	relinking bool
	workers   sync.WaitGroup
}

// New creates a client. No I/O happens until Initialize, so the session
// artifact can be restored in between.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limit := rate.Inf
	if opts.SendRPS > 0 {
		limit = rate.Limit(opts.SendRPS)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		opts:    opts,
		log:     log,
		limiter: rate.NewLimiter(limit, 1),
		events:  make(chan chat.Event, eventBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.relink = c.startRelink
	return c
}

// Initialize opens the session store and connects. Without a stored
// device it starts the QR pairing flow.
func (c *Client) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.opts.DBPath), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+c.opts.DBPath+"?_foreign_keys=on&_journal_mode=DELETE")
	if err != nil {
		return fmt.Errorf("failed to open session database: %w", err)
	}

	container := sqlstore.NewWithDB(db, "sqlite3", newLogger(c.log.Named("store")))
	if err := container.Upgrade(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to upgrade session database: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return fmt.Errorf("failed to load device: %w", err)
	}

	wa := c.newLibraryClient(device)

	c.mu.Lock()
	c.db = db
	c.container = container
	c.wa = wa
	c.mu.Unlock()

	if wa.Store.ID != nil {
		c.log.Info("Resuming stored device", zap.String("jid", wa.Store.ID.String()))
	}
	return c.connect(wa)
}

func (c *Client) newLibraryClient(device *store.Device) *whatsmeow.Client {
	wa := whatsmeow.NewClient(device, newLogger(c.log.Named("client")))
	wa.AddEventHandler(c.handle)
	return wa
}

// connect dials, opening a QR channel first when the device is unpaired.
func (c *Client) connect(wa *whatsmeow.Client) error {
	if wa.Store.ID == nil {
		c.log.Info("No stored device, starting QR pairing")
		qr, err := wa.GetQRChannel(c.ctx)
		if err != nil {
			return fmt.Errorf("failed to start pairing: %w", err)
		}
		go c.pumpQR(qr)
	}
	if err := wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

func (c *Client) pumpQR(qr <-chan whatsmeow.QRChannelItem) {
	for item := range qr {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			c.emit(chat.NewEvent(chat.EventQRIssued, item.Code))
			if c.opts.QRWriter != nil {
				qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, c.opts.QRWriter)
			}
		case whatsmeow.QRChannelSuccess.Event:
			return
		case whatsmeow.QRChannelClientOutdated.Event:
			// New codes would be refused the same way.
			c.emit(chat.NewEvent(chat.EventAuthFailed, "pairing refused: client outdated"))
			return
		case whatsmeow.QRChannelEventError:
			c.relink(fmt.Sprintf("pairing error: %v", item.Error), false)
			return
		default:
			// Timeout or a bad scan: the channel is spent, start over.
			c.relink("pairing "+item.Event, false)
			return
		}
	}
}

// startRelink drops the current connection and pairs a fresh device in the
// background. Concurrent requests collapse into one.
func (c *Client) startRelink(reason string, loggedOut bool) {
	c.mu.Lock()
	if c.closed || c.relinking {
		c.mu.Unlock()
		return
	}
	c.relinking = true
	c.workers.Add(1)
	old, container := c.wa, c.container
	c.mu.Unlock()

	go func() {
		defer c.workers.Done()
		defer func() {
			c.mu.Lock()
			c.relinking = false
			c.mu.Unlock()
		}()
		c.relinkWith(old, container, reason, loggedOut)
	}()
}

func (c *Client) relinkWith(old *whatsmeow.Client, container *sqlstore.Container, reason string, loggedOut bool) {
	log := c.log.With(zap.String("reason", reason))
	if old != nil {
		old.RemoveEventHandlers()
		old.Disconnect()
	}

	if loggedOut {
		// The library deletes the device concurrently with the LoggedOut
		// event; delete again so the file is device-less before it is
		// reported and backed up.
		if err := forgetDevices(c.ctx, container); err != nil {
			log.Warn("Failed to clear revoked device", zap.Error(err))
		}
		log.Warn("Login revoked, pairing a new device")
		c.emit(chat.NewResetEvent(reason))
	} else {
		log.Info("Pairing ended without a login, issuing new codes")
		c.emit(chat.NewEvent(chat.EventAuthFailed, reason))
	}

	select {
	case <-time.After(relinkDelay):
	case <-c.ctx.Done():
		return
	}
	if container == nil {
		return
	}

	wa := c.newLibraryClient(container.NewDevice())
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		wa.RemoveEventHandlers()
		return
	}
	c.wa = wa
	c.mu.Unlock()

	if err := c.connect(wa); err != nil {
		log.Error("Failed to restart pairing", zap.Error(err))
		c.emit(chat.NewEvent(chat.EventAuthFailed, err.Error()))
	}
}

func forgetDevices(ctx context.Context, container *sqlstore.Container) error {
	if container == nil {
		return nil
	}
	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return err
	}
	for _, device := range devices {
		if err := device.Delete(ctx); err != nil {
			return err
		}
	}
	return nil
}

// handle runs on the library's event goroutine.
func (c *Client) handle(evt interface{}) {
	if out, ok := evt.(*events.LoggedOut); ok {
		c.ready.Store(false)
		c.relink("logged out: "+out.Reason.String(), true)
		return
	}
	for _, e := range translate(evt) {
		switch e.Kind {
		case chat.EventReady:
			c.ready.Store(true)
		case chat.EventAuthFailed, chat.EventDisconnected:
			c.ready.Store(false)
		}
		c.emit(e)
	}
}

// emit never blocks the library's event loop: when nobody drains the
// channel the event is dropped.
func (c *Client) emit(e chat.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- e:
	default:
		c.log.Warn("Dropping lifecycle event, consumer is behind", zap.Stringer("kind", e.Kind))
	}
}

// Events implements chat.Adapter.
func (c *Client) Events() <-chan chat.Event {
	return c.events
}

// Ready implements chat.Sender.
func (c *Client) Ready() bool {
	return c.ready.Load()
}

// SendText implements chat.Sender.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, to, func(wa *whatsmeow.Client) (*waE2E.Message, error) {
		return textMessage(text), nil
	})
}

// SendMedia implements chat.Sender.
func (c *Client) SendMedia(ctx context.Context, to string, media chat.Media, caption string) error {
	mt, err := mediaType(media.Kind)
	if err != nil {
		return err
	}
	return c.send(ctx, to, func(wa *whatsmeow.Client) (*waE2E.Message, error) {
		up, err := wa.Upload(ctx, media.Data, mt)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", media.Kind, err)
		}
		return mediaMessage(media, up, caption)
	})
}

func (c *Client) send(ctx context.Context, to string, build func(*whatsmeow.Client) (*waE2E.Message, error)) error {
	wa, err := c.client()
	if err != nil {
		return err
	}
	jid, err := ParseRecipient(to)
	if err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	msg, err := build(wa)
	if err != nil {
		return err
	}
	resp, err := wa.SendMessage(ctx, jid, msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	c.log.Debug("Message sent", zap.String("id", resp.ID), zap.Stringer("to", jid))
	return nil
}

func (c *Client) client() (*whatsmeow.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, chat.ErrClosed
	}
	if c.wa == nil || !c.ready.Load() {
		return nil, ErrNotConnected
	}
	return c.wa, nil
}

// SnapshotSession implements chat.SessionSnapshotter. While the database is
// open it copies it with VACUUM INTO, which reads inside one transaction and
// so never sees a half-written page. Otherwise the file is read directly.
func (c *Client) SnapshotSession(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	db, closed := c.db, c.closed
	c.mu.Unlock()
	if db == nil || closed {
		return os.ReadFile(c.opts.DBPath)
	}

	tmp := c.opts.DBPath + ".snapshot"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to clear old snapshot: %w", err)
	}
	defer os.Remove(tmp)

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", tmp); err != nil {
		return nil, fmt.Errorf("failed to snapshot session database: %w", err)
	}
	return os.ReadFile(tmp)
}

// Close disconnects, releases the session database and closes Events.
// The session file stays on disk.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.ready.Store(false)
	close(c.events)
	wa, container := c.wa, c.container
	c.mu.Unlock()

	c.cancel()
	if wa != nil {
		wa.RemoveEventHandlers()
		wa.Disconnect()
	}
	c.workers.Wait()
	if container != nil {
		if err := container.Close(); err != nil {
			return fmt.Errorf("failed to close session database: %w", err)
		}
	}
	return nil
}

var (
	_ chat.Adapter            = (*Client)(nil)
	_ chat.SessionSnapshotter = (*Client)(nil)
)
