// Package monitoring serves the live state of a texture cache replay over
// HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/tmemsim/cmdstream"
	"github.com/sarchlab/tmemsim/tmem"
	"github.com/sarchlab/tmemsim/tracing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// StateSource provides consistent copies of the replayed state. The monitor
// reads it from the HTTP goroutines.
type StateSource interface {
	Units() [tmem.NumUnits]tmem.UnitState
	Stats() cmdstream.Stats
}

// Monitor turns a replay into a server that can be inspected while it runs.
type Monitor struct {
	source     StateSource
	counts     *tracing.CountTracer
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor(source StateSource) *Monitor {
	return &Monitor{source: source}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterCountTracer exposes the counts of a CountTracer under
// /api/transitions.
func (m *Monitor) RegisterCountTracer(t *tracing.CountTracer) {
	m.counts = t
}

// CreateProgressBar creates a progress bar for a stream of total commands.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:     xid.New().String(),
		stream: name,
		start:  time.Now(),
		total:  total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar stops reporting a bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/units", m.listUnits)
	r.HandleFunc("/api/unit/{id}", m.unitDetails)
	r.HandleFunc("/api/unit/{id}/field/{path}", m.unitField)
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/transitions", m.transitions)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() (int, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return 0, fmt.Errorf("monitoring: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(os.Stderr,
		"Monitoring replay with http://localhost:%d/api/units\n", port)

	router := m.Router()
	go func() {
		err := http.Serve(listener, router)
		dieOnErr(err)
	}()

	return port, nil
}

type bankRsp struct {
	Width  uint8  `json:"width"`
	Height uint8  `json:"height"`
	Base   uint32 `json:"base"`
	Size   uint32 `json:"size"`
}

type unitRsp struct {
	Unit           int     `json:"unit"`
	Classification string  `json:"classification"`
	Even           bankRsp `json:"even"`
	Odd            bankRsp `json:"odd"`
}

func toBankRsp(b tmem.Bank) bankRsp {
	return bankRsp{Width: b.Width, Height: b.Height, Base: b.Base, Size: b.Size}
}

func (m *Monitor) listUnits(w http.ResponseWriter, _ *http.Request) {
	units := m.source.Units()

	rsp := make([]unitRsp, 0, len(units))
	for i, u := range units {
		rsp = append(rsp, unitRsp{
			Unit:           i,
			Classification: u.Classification.String(),
			Even:           toBankRsp(u.Even),
			Odd:            toBankRsp(u.Odd),
		})
	}

	writeJSON(w, rsp)
}

func (m *Monitor) findUnitOr404(
	w http.ResponseWriter,
	r *http.Request,
) (*tmem.UnitState, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 0 || id >= tmem.NumUnits {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Unit %s not found", mux.Vars(r)["id"])

		return nil, false
	}

	units := m.source.Units()
	unit := units[id]

	return &unit, true
}

func (m *Monitor) unitDetails(w http.ResponseWriter, r *http.Request) {
	unit, ok := m.findUnitOr404(w, r)
	if !ok {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(unit)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) unitField(w http.ResponseWriter, r *http.Request) {
	unit, ok := m.findUnitOr404(w, r)
	if !ok {
		return
	}

	fields := strings.Split(mux.Vars(r)["path"], ".")

	serializer := goseth.NewSerializer()
	serializer.SetRoot(unit)
	serializer.SetMaxDepth(1)

	err := serializer.SetEntryPoint(fields)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.source.Stats())
}

func (m *Monitor) transitions(w http.ResponseWriter, _ *http.Request) {
	if m.counts == nil {
		writeJSON(w, map[string]uint64{})
		return
	}

	writeJSON(w, m.counts.Summary())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
