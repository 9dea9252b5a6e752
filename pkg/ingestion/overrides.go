package ingestion

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// TenantOverrides maps tenant FQDNs to explicit container names, read from
// a JSON file operators can change without restarting the service:
//
//	{"overrides": [{"fqdn": "example.com", "container": "custom-logs"}]}
type TenantOverrides struct {
	logContext logrus.FieldLogger
	path       string

	mutex   sync.RWMutex
	entries map[string]string
}

type tenantOverridesFile struct {
	Overrides []tenantOverrideEntry `json:"overrides"`
}

type tenantOverrideEntry struct {
	FQDN      string `json:"fqdn"`
	Container string `json:"container"`
}

// NewTenantOverrides loads the overrides file and starts watching it for
// changes.
func NewTenantOverrides(logContext logrus.FieldLogger, path string) (*TenantOverrides, error) {
	overrides := &TenantOverrides{
		logContext: logContext.WithFields(logrus.Fields{
			"path": path,
		}),
		path:    path,
		entries: map[string]string{},
	}

	if err := overrides.load(); err != nil {
		return nil, err
	}

	go overrides.watchAndLoad()
	return overrides, nil
}

// Lookup returns the configured container for a tenant when one is set.
func (t *TenantOverrides) Lookup(fqdn string) (string, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	container, ok := t.entries[strings.ToLower(strings.TrimSpace(fqdn))]
	return container, ok
}

func (t *TenantOverrides) load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}

	var parsed tenantOverridesFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	entries := map[string]string{}
	for _, entry := range parsed.Overrides {
		fqdn := strings.ToLower(strings.TrimSpace(entry.FQDN))
		container := strings.TrimSpace(entry.Container)
		if fqdn == "" || container == "" {
			continue
		}
		entries[fqdn] = container
	}

	t.mutex.Lock()
	t.entries = entries
	t.mutex.Unlock()

	t.logContext.WithFields(logrus.Fields{
		"overrides": len(entries),
	}).Info("tenant overrides updated")
	return nil
}

func (t *TenantOverrides) watchAndLoad() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("starting overrides watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(t.path); err != nil {
		t.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("watching overrides file")
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Mounted config volumes swap the file with a rename, which
			// shows up as a remove.
			if event.Op == fsnotify.Remove {
				watcher.Remove(event.Name)
				watcher.Add(t.path)
				t.reload()
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write {
				t.reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.logContext.WithFields(logrus.Fields{
				"error": err,
			}).Error("watching overrides file")
		}
	}
}

// reload keeps the previous entries when the new file contents do not
// parse.
func (t *TenantOverrides) reload() {
	if err := t.load(); err != nil {
		t.logContext.WithFields(logrus.Fields{
			"error": err,
		}).Error("reloading tenant overrides")
	}
}
