package whirlwind

import (
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/rotisserie/eris"

	wwlog "pkg.whirlwind.dev/whirlwind/log"
	"pkg.whirlwind.dev/whirlwind/statsd"
	"pkg.whirlwind.dev/whirlwind/types"
)

// System is the shape of every game system: it receives exclusive access to
// the whole world for the duration of its call and returns an error to abort
// the schedule it runs under. Systems are registered by function reference;
// their names are derived from the function symbol, so named top-level
// functions are the expected currency.
type System func(w *World) error

type registeredSystem struct {
	name string
	fn   System
}

// ScheduleManager keeps named, ordered lists of systems. A schedule is
// behavior wiring, not data: re-registering a name clears its list.
type ScheduleManager struct {
	// registeredSchedules is a list of all the registered schedule names in the order that they were registered.
	// This is represented as a list as maps in Go are unordered.
	registeredSchedules []string

	// systemsBySchedule is a map of schedule names to their systems, in the order they were added.
	systemsBySchedule map[string][]registeredSystem

	// currentSystem is the name of the system that is currently running.
	currentSystem *string
}

// NewScheduleManager creates a new schedule manager.
func NewScheduleManager() *ScheduleManager {
	return &ScheduleManager{
		registeredSchedules: make([]string, 0),
		systemsBySchedule:   make(map[string][]registeredSystem),
		currentSystem:       nil,
	}
}

// RegisterSchedule creates an empty schedule under the given name.
// Registering a name that already exists clears its systems.
func (m *ScheduleManager) RegisterSchedule(name string) {
	if _, ok := m.systemsBySchedule[name]; !ok {
		m.registeredSchedules = append(m.registeredSchedules, name)
	}
	m.systemsBySchedule[name] = make([]registeredSystem, 0)
}

// AddSystems appends systems to the named schedule in the order given.
// There can only be one system with a given name per schedule, which is derived from the function name.
// If there is a duplicate system name, an error will be returned and none of the systems will be registered.
func (m *ScheduleManager) AddSystems(scheduleName string, systems ...System) error {
	existing, ok := m.systemsBySchedule[scheduleName]
	if !ok {
		return eris.Wrapf(ErrScheduleNotFound, "schedule %q is not registered", scheduleName)
	}

	// Iterate through all the systems and check if they are already registered.
	// This is done before registering any of the systems to ensure that all are registered or none of them are.
	systemNames := make([]string, 0, len(systems))
	for _, system := range systems {
		// Obtain the name of the system function using reflection.
		systemName := filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())

		// Check for duplicate system names within the list of systems to be registered
		if slices.Contains(systemNames, systemName) {
			return eris.Errorf("duplicate system %q in slice", systemName)
		}

		for _, sys := range existing {
			if sys.name == systemName {
				return eris.Errorf("system %q is already in schedule %q", systemName, scheduleName)
			}
		}

		systemNames = append(systemNames, systemName)
	}

	for i, systemName := range systemNames {
		existing = append(existing, registeredSystem{name: systemName, fn: systems[i]})
	}
	m.systemsBySchedule[scheduleName] = existing

	return nil
}

// RunSchedule runs every system in the named schedule in the order they were added.
// The first system error aborts the run; systems after it do not execute.
func (m *ScheduleManager) RunSchedule(w *World, scheduleName string) error {
	systems, ok := m.systemsBySchedule[scheduleName]
	if !ok {
		return eris.Wrapf(ErrScheduleNotFound, "schedule %q is not registered", scheduleName)
	}

	scheduleStartTime := time.Now()

	// Systems added to this schedule while it runs take effect on the next run.
	for _, sys := range slices.Clone(systems) {
		if err := m.runSystem(w, sys); err != nil {
			return err
		}
	}

	// Emit the total time it took to run the whole schedule
	statsd.EmitFrameStat(scheduleStartTime, scheduleName)

	return nil
}

// RunSystem invokes one system directly against the world, bypassing
// schedules entirely.
func (m *ScheduleManager) RunSystem(w *World, system System) error {
	systemName := filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())
	return m.runSystem(w, registeredSystem{name: systemName, fn: system})
}

func (m *ScheduleManager) runSystem(w *World, sys registeredSystem) error {
	// Explicit memory aliasing
	sysName := sys.name
	m.currentSystem = &sysName

	// Inject the system name into the logger. The base logger is restored on
	// the way out, but deliberately not when the system panics, so the panic
	// diagnostics keep the system's name.
	baseLogger := w.logger
	w.logger = wwlog.CreateSystemLogger(baseLogger, sys.name)

	// Executes the system function that the user registered
	systemStartTime := time.Now()
	err := sys.fn(w)
	w.logger = baseLogger
	if err != nil {
		m.currentSystem = nil
		return eris.Wrapf(err, "system %s generated an error", sys.name)
	}

	// Emit the total time it took to run the system
	statsd.EmitFrameStat(systemStartTime, sys.name)

	// Set the current system to nil to indicate that no system is currently running
	m.currentSystem = nil

	return nil
}

func (m *ScheduleManager) GetScheduleNames() []string {
	return m.registeredSchedules
}

// GetSchedules returns every schedule with its system names, in registration
// order.
func (m *ScheduleManager) GetSchedules() []types.ScheduleInfo {
	infos := make([]types.ScheduleInfo, 0, len(m.registeredSchedules))
	for _, name := range m.registeredSchedules {
		systems := m.systemsBySchedule[name]
		systemNames := make([]string, 0, len(systems))
		for _, sys := range systems {
			systemNames = append(systemNames, sys.name)
		}
		infos = append(infos, types.ScheduleInfo{Name: name, Systems: systemNames})
	}
	return infos
}

func (m *ScheduleManager) GetCurrentSystem() string {
	if m.currentSystem == nil {
		return "no_system"
	}
	return *m.currentSystem
}
