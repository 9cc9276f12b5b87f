package listen

import (
	"os"
	"time"

	"vfdd/inbox"
	"vfdd/sanitize"
)

const (
	defaultPollInterval = time.Second
	defaultStaleAfter   = 60 * time.Second
)

// FilePoller watches the well-known display file. Content promotes
// only when it changes; while the file stays unchanged and its mtime is
// fresh, the record's receive time is refreshed so it remains eligible
// without preempting rotation again. A stale or unreadable file is
// simply "no content" and never disturbs the prior record.
type FilePoller struct {
	path       string
	store      *inbox.Store
	interval   time.Duration
	staleAfter time.Duration
	onIngest   func(origin string)

	lastContent string

	quit chan struct{}
	done chan struct{}
}

func NewFilePoller(path string, staleAfter time.Duration, store *inbox.Store, onIngest func(origin string)) *FilePoller {
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &FilePoller{
		path:       path,
		store:      store,
		interval:   defaultPollInterval,
		staleAfter: staleAfter,
		onIngest:   onIngest,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (p *FilePoller) Start() {
	go p.run()
}

func (p *FilePoller) Stop() {
	close(p.quit)
	<-p.done
}

func (p *FilePoller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.quit:
			return
		case now := <-ticker.C:
			p.poll(now)
		}
	}
}

func (p *FilePoller) poll(now time.Time) {
	info, err := os.Stat(p.path)
	if err != nil {
		return
	}
	if now.Sub(info.ModTime()) > p.staleAfter {
		return
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return
	}
	f, ok := sanitize.Sanitize(data)
	if !ok {
		return
	}
	content := f.Line1 + "\n" + f.Line2
	if content == p.lastContent {
		p.store.Refresh(OriginFile, now)
		return
	}
	p.lastContent = content
	p.store.Set(f, OriginFile, now)
	if p.onIngest != nil {
		p.onIngest(OriginFile)
	}
}
