package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"resumefit/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// certBundle is one consistent snapshot of the TLS material on disk.
type certBundle struct {
	cert     *tls.Certificate
	caPool   *x509.CertPool
	notAfter time.Time
	loadedAt time.Time
}

// CertWatcher serves the current server key pair (and client CA pool in
// mutual mode) and reloads them when the files change on disk. A failed
// reload keeps the previous bundle.
type CertWatcher struct {
	certFile string
	keyFile  string
	caFile   string

	current atomic.Pointer[certBundle]

	mu            sync.Mutex
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	reloadCh      chan struct{}
	stopCh        chan struct{}
	running       bool

	reloads      atomic.Int64
	failures     atomic.Int64
	lastErr      atomic.Pointer[string]
	onReloadHook func(error)

	logger *errors.Logger
}

// NewCertWatcher loads the key pair (and caFile when non-empty) once. The
// files are not watched until Start is called.
func NewCertWatcher(certFile, keyFile, caFile string, debounceDelay time.Duration, logger *errors.Logger) (*CertWatcher, error) {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	cw := &CertWatcher{
		certFile:      certFile,
		keyFile:       keyFile,
		caFile:        caFile,
		debounceDelay: debounceDelay,
		reloadCh:      make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		logger:        logger,
	}

	bundle, err := cw.load()
	if err != nil {
		return nil, err
	}
	cw.current.Store(bundle)
	return cw, nil
}

func (cw *CertWatcher) load() (*certBundle, error) {
	cert, err := tls.LoadX509KeyPair(cw.certFile, cw.keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key from files: %w", err)
	}

	bundle := &certBundle{cert: &cert, loadedAt: time.Now()}
	if leaf, err := x509.ParseCertificate(cert.Certificate[0]); err == nil {
		bundle.notAfter = leaf.NotAfter
	}

	if cw.caFile != "" {
		pem, err := os.ReadFile(cw.caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to append CA cert from %s", cw.caFile)
		}
		bundle.caPool = pool
	}
	return bundle, nil
}

// Reload re-reads the files now.
func (cw *CertWatcher) Reload() error {
	bundle, err := cw.load()
	cw.reloads.Add(1)
	if err != nil {
		cw.failures.Add(1)
		msg := err.Error()
		cw.lastErr.Store(&msg)
		cw.logger.LogError(err, "Failed to reload TLS certificates")
	} else {
		cw.current.Store(bundle)
		cw.lastErr.Store(nil)
		cw.logger.Info("TLS certificates reloaded", "not_after", bundle.notAfter)
	}
	if cw.onReloadHook != nil {
		cw.onReloadHook(err)
	}
	return err
}

// GetCertificate implements tls.Config.GetCertificate.
func (cw *CertWatcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return cw.current.Load().cert, nil
}

// ClientCAs returns the current client CA pool, nil outside mutual mode.
func (cw *CertWatcher) ClientCAs() *x509.CertPool {
	return cw.current.Load().caPool
}

// Start watches the certificate files and their directories, so atomic
// rename-style replacements are seen too.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := make(map[string]struct{})
	for _, file := range cw.files() {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	cw.fsWatcher = watcher
	cw.running = true
	go cw.watchLoop(watcher)

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files(),
		"debounce_delay", cw.debounceDelay.String())
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}
	close(cw.stopCh)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.running = false

	err := cw.fsWatcher.Close()
	cw.logger.Info("Certificate file watcher stopped")
	return err
}

func (cw *CertWatcher) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if cw.relevant(event) {
				cw.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			cw.logger.LogError(err, "File watcher error")
		case <-cw.reloadCh:
			_ = cw.Reload()
		case <-cw.stopCh:
			return
		}
	}
}

func (cw *CertWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, file := range cw.files() {
		if name == filepath.Clean(file) || filepath.Base(name) == filepath.Base(file) {
			return true
		}
	}
	return false
}

// scheduleReload coalesces bursts of events into one reload.
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		select {
		case cw.reloadCh <- struct{}{}:
		default:
		}
	})
}

func (cw *CertWatcher) files() []string {
	files := []string{cw.certFile, cw.keyFile}
	if cw.caFile != "" {
		files = append(files, cw.caFile)
	}
	return files
}

// Status summarizes the served certificate for the health endpoint.
func (cw *CertWatcher) Status() map[string]any {
	cw.mu.Lock()
	running := cw.running
	cw.mu.Unlock()

	bundle := cw.current.Load()
	status := map[string]any{
		"watching":       running,
		"watched_files":  cw.files(),
		"loaded_at":      bundle.loadedAt,
		"reload_count":   cw.reloads.Load(),
		"reload_failure": cw.failures.Load(),
	}
	if !bundle.notAfter.IsZero() {
		status["not_after"] = bundle.notAfter
		status["time_to_expiry_hours"] = int(time.Until(bundle.notAfter).Hours())
	}
	if msg := cw.lastErr.Load(); msg != nil {
		status["last_reload_error"] = *msg
	}
	return status
}
