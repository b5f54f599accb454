package device

import (
	"fmt"
	"strings"
)

// MaxDevices is the registry capacity.
const MaxDevices = 15

// Battery thresholds for smartwatches.
const (
	// MinBatteryToTurnOn is the lowest battery percentage that allows TurnOn.
	MinBatteryToTurnOn = 11

	// TurnOnBatteryCost is deducted from the battery on every successful TurnOn.
	TurnOnBatteryCost = 10

	// LowBatteryThreshold triggers a notification when the battery drops below it.
	LowBatteryThreshold = 20
)

// RequiredNetworkMarker must appear in an embedded device's network name
// for it to connect.
const RequiredNetworkMarker = "MD Ltd."

// Kind identifies one of the closed set of device variants.
type Kind string

// Device kinds.
const (
	KindSmartwatch       Kind = "smartwatch"
	KindPersonalComputer Kind = "personal_computer"
	KindEmbedded         Kind = "embedded_device"
)

// AllKinds returns every device kind in ID-prefix order.
func AllKinds() []Kind {
	return []Kind{KindSmartwatch, KindPersonalComputer, KindEmbedded}
}

// Prefix returns the ID prefix used for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindSmartwatch:
		return "SW"
	case KindPersonalComputer:
		return "P"
	case KindEmbedded:
		return "ED"
	default:
		return ""
	}
}

// KindForPrefix returns the kind that owns an ID prefix.
func KindForPrefix(prefix string) (Kind, bool) {
	for _, k := range AllKinds() {
		if k.Prefix() == prefix {
			return k, true
		}
	}
	return "", false
}

// Device is implemented by Smartwatch, PersonalComputer and EmbeddedDevice.
// The set is closed: the unexported methods keep other packages from adding
// variants.
type Device interface {
	ID() string
	Name() string
	Kind() Kind
	IsOn() bool

	// TurnOn applies the kind's power rule and returns why it refused.
	TurnOn() error

	// TurnOff always succeeds.
	TurnOff()

	// Describe returns a one-line human readable summary.
	Describe() string

	setID(id string)
	bind(n Notifier)
	validate() error
	clone() Device
}

// base holds the fields every kind shares.
type base struct {
	id   string
	name string
	on   bool
}

func (b *base) ID() string      { return b.id }
func (b *base) Name() string    { return b.name }
func (b *base) IsOn() bool      { return b.on }
func (b *base) TurnOff()        { b.on = false }
func (b *base) setID(id string) { b.id = id }
func (b *base) bind(Notifier)   {}

func (b *base) state() string {
	if b.on {
		return "on"
	}
	return "off"
}

// Smartwatch is a battery powered wearable.
type Smartwatch struct {
	base
	battery  int
	notifier Notifier
}

// NewSmartwatch creates a smartwatch. An empty id is assigned by Registry.Add.
// Construction never raises the low-battery notification.
func NewSmartwatch(id, name string, on bool, battery int) (*Smartwatch, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateBattery(battery); err != nil {
		return nil, err
	}
	return &Smartwatch{base: base{id: id, name: name, on: on}, battery: battery}, nil
}

// Kind returns KindSmartwatch.
func (s *Smartwatch) Kind() Kind { return KindSmartwatch }

// Battery returns the battery percentage.
func (s *Smartwatch) Battery() int { return s.battery }

// SetBattery assigns the battery percentage. Values outside 0..100 return
// ErrOutOfRange and leave the watch unchanged. Crossing from at least 20%
// to below 20% notifies the bound Notifier.
func (s *Smartwatch) SetBattery(percent int) error {
	if err := ValidateBattery(percent); err != nil {
		return err
	}
	previous := s.battery
	s.battery = percent
	if previous >= LowBatteryThreshold && percent < LowBatteryThreshold && s.notifier != nil {
		s.notifier.LowBattery(s.id, percent)
	}
	return nil
}

// TurnOn switches the watch on and spends TurnOnBatteryCost percent.
func (s *Smartwatch) TurnOn() error {
	if s.battery < MinBatteryToTurnOn {
		return fmt.Errorf("%w: battery at %d%%, need %d%%", ErrInsufficientPower, s.battery, MinBatteryToTurnOn)
	}
	s.on = true
	return s.SetBattery(s.battery - TurnOnBatteryCost)
}

// Describe returns a one-line summary of the watch.
func (s *Smartwatch) Describe() string {
	return fmt.Sprintf("Smartwatch %s %q is %s, battery %d%%", s.id, s.name, s.state(), s.battery)
}

func (s *Smartwatch) bind(n Notifier) { s.notifier = n }

func (s *Smartwatch) validate() error {
	if err := ValidateName(s.name); err != nil {
		return err
	}
	return ValidateBattery(s.battery)
}

func (s *Smartwatch) clone() Device {
	cpy := *s
	cpy.notifier = nil
	return &cpy
}

// PersonalComputer is a general purpose computer.
type PersonalComputer struct {
	base
	os string
}

// NewPersonalComputer creates a computer. The operating system may be empty.
func NewPersonalComputer(id, name string, on bool, os string) (*PersonalComputer, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateText(os); err != nil {
		return nil, err
	}
	return &PersonalComputer{base: base{id: id, name: name, on: on}, os: os}, nil
}

// Kind returns KindPersonalComputer.
func (p *PersonalComputer) Kind() Kind { return KindPersonalComputer }

// OperatingSystem returns the installed operating system, possibly empty.
func (p *PersonalComputer) OperatingSystem() string { return p.os }

// SetOperatingSystem replaces the operating system.
func (p *PersonalComputer) SetOperatingSystem(os string) error {
	if err := ValidateText(os); err != nil {
		return err
	}
	p.os = os
	return nil
}

// TurnOn switches the computer on if it has an operating system.
func (p *PersonalComputer) TurnOn() error {
	if strings.TrimSpace(p.os) == "" {
		return ErrMissingOperatingSystem
	}
	p.on = true
	return nil
}

// Describe returns a one-line summary of the computer.
func (p *PersonalComputer) Describe() string {
	os := p.os
	if os == "" {
		os = "no OS"
	}
	return fmt.Sprintf("PC %s %q is %s, running %s", p.id, p.name, p.state(), os)
}

func (p *PersonalComputer) validate() error {
	if err := ValidateName(p.name); err != nil {
		return err
	}
	return ValidateText(p.os)
}

func (p *PersonalComputer) clone() Device {
	cpy := *p
	return &cpy
}

// EmbeddedDevice is a networked controller.
type EmbeddedDevice struct {
	base
	ip      string
	network string
}

// NewEmbeddedDevice creates an embedded device in the off state.
func NewEmbeddedDevice(id, name, ip, network string) (*EmbeddedDevice, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateIPAddress(ip); err != nil {
		return nil, err
	}
	if err := ValidateText(network); err != nil {
		return nil, err
	}
	return &EmbeddedDevice{base: base{id: id, name: name}, ip: ip, network: network}, nil
}

// Kind returns KindEmbedded.
func (e *EmbeddedDevice) Kind() Kind { return KindEmbedded }

// IPAddress returns the device's IP address.
func (e *EmbeddedDevice) IPAddress() string { return e.ip }

// NetworkName returns the network the device joins.
func (e *EmbeddedDevice) NetworkName() string { return e.network }

// SetIPAddress replaces the IP address. Malformed addresses return
// ErrInvalidFormat and leave the device unchanged.
func (e *EmbeddedDevice) SetIPAddress(ip string) error {
	if err := ValidateIPAddress(ip); err != nil {
		return err
	}
	e.ip = ip
	return nil
}

// SetNetworkName replaces the network name.
func (e *EmbeddedDevice) SetNetworkName(network string) error {
	if err := ValidateText(network); err != nil {
		return err
	}
	e.network = network
	return nil
}

// Connect checks that the device is on an allowed network.
func (e *EmbeddedDevice) Connect() error {
	if !strings.Contains(e.network, RequiredNetworkMarker) {
		return fmt.Errorf("%w: network %q", ErrConnectionRefused, e.network)
	}
	return nil
}

// TurnOn connects the device and switches it on.
func (e *EmbeddedDevice) TurnOn() error {
	if err := e.Connect(); err != nil {
		return err
	}
	e.on = true
	return nil
}

// Describe returns a one-line summary of the embedded device.
func (e *EmbeddedDevice) Describe() string {
	return fmt.Sprintf("Embedded device %s %q is %s, %s on %q", e.id, e.name, e.state(), e.ip, e.network)
}

func (e *EmbeddedDevice) validate() error {
	if err := ValidateName(e.name); err != nil {
		return err
	}
	if err := ValidateIPAddress(e.ip); err != nil {
		return err
	}
	return ValidateText(e.network)
}

func (e *EmbeddedDevice) clone() Device {
	cpy := *e
	return &cpy
}
