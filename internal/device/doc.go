// Package device provides the device inventory registry.
//
// The registry is an ordered, bounded collection of heterogeneous device
// records. Three kinds exist, each with its own invariants and power rules:
//
//   - Smartwatch (ID prefix SW): battery percentage 0..100, needs at least
//     11% to turn on and spends 10% doing so. Dropping below 20% raises a
//     low-battery notification.
//   - PersonalComputer (ID prefix P): needs an operating system to turn on.
//   - EmbeddedDevice (ID prefix ED): dotted-quad IP address, and must be on a
//     network whose name contains "MD Ltd." to connect and turn on.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                        Device Inventory                          │
//	│                                                                  │
//	│  ┌────────────────┐   ┌────────────────┐   ┌────────────────┐    │
//	│  │    Registry    │   │     Codec      │   │   Validation   │    │
//	│  │ (registry.go)  │   │   (codec.go)   │   │(validation.go) │    │
//	│  │                │   │                │   │                │    │
//	│  │ • capacity 15  │   │ • line encode  │   │ • battery      │    │
//	│  │ • ID sequence  │   │ • line decode  │   │ • IP address   │    │
//	│  │ • outcomes     │   │ • legacy IDs   │   │ • free text    │    │
//	│  └───────┬────────┘   └───────▲────────┘   └────────────────┘    │
//	│          │ Loader/Saver       │                                  │
//	│          ▼                    │                                  │
//	│  ┌────────────────────────────┴──┐   ┌────────────────────────┐  │
//	│  │     FileStore (filestore.go)  │   │ Recorder / Notifier    │  │
//	│  │  whole-file read and write    │   │ (events.go)            │  │
//	│  └───────────────────────────────┘   └────────────────────────┘  │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Usage
//
//	store := device.NewFileStore()
//	store.SetLogger(log)
//
//	reg, err := device.Open(ctx, device.Deps{
//	    Loader:      store,
//	    Saver:       store,
//	    Source:      "data/input.txt",
//	    Destination: "data/output.txt",
//	    Logger:      log,
//	})
//	if err != nil {
//	    return err
//	}
//
//	watch, _ := device.NewSmartwatch("", "Runner", false, 80)
//	if err := reg.Add(ctx, watch); err != nil {
//	    return err
//	}
//	// watch.ID() == "SW-1" when no smartwatch existed before
//
//	outcome, err := reg.TurnOn(ctx, watch.ID())
//
// # Outcomes
//
// Mutations that address a device by ID never fail because the ID is
// unknown. They return OutcomeNotFound and report it through the Recorder
// and Logger. Validation failures are returned as errors and reported as
// OutcomeRejected.
//
// # Thread Safety
//
// The Registry is safe for concurrent use. All operations are protected by
// a read-write mutex. Recorders are called after the lock is released;
// Notifiers are called while it is held and must not call back into the
// Registry.
package device
