// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/mpu6500_telemetry/internal/config"
	"github.com/relabs-tech/mpu6500_telemetry/internal/imu"
	"github.com/relabs-tech/mpu6500_telemetry/internal/mpu6500"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// IMUManager owns the single MPU6500 instance and serializes every access
// to it. The driver itself has no internal locking; this mutex is the
// serialization layer the integration requires.
type IMUManager struct {
	mu        sync.Mutex
	bus       i2c.BusCloser
	tr        mpu6500.Transport
	dev       *mpu6500.MPU6500
	source    string
	available bool
}

var (
	manager     *IMUManager
	managerOnce sync.Once
)

// GetIMUManager returns the process-wide manager instance.
func GetIMUManager() *IMUManager {
	managerOnce.Do(func() {
		manager = &IMUManager{}
	})
	return manager
}

// Init opens the configured I2C bus, builds the driver, runs the full
// initialization sequence and logs the device identity. WHO_AM_I is logged
// and checked only with a warning: a mismatch does not fail Init.
func (m *IMUManager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

func (m *IMUManager) initLocked() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("imu manager: periph host init: %w", err)
	}

	if m.bus == nil {
		bus, err := i2creg.Open(cfg.IMUI2CBus)
		if err != nil {
			return fmt.Errorf("imu manager: open I2C bus %q: %w", cfg.IMUI2CBus, err)
		}
		m.bus = bus
		m.source = bus.String()
	}

	tr := mpu6500.NewI2CTransport(m.bus, cfg.IMUUseAltAddress)
	m.tr = tr
	dev := mpu6500.New(tr,
		mpu6500.AccelRange(cfg.IMUAccelRange),
		mpu6500.GyroRange(cfg.IMUGyroRange))

	if err := dev.Init(); err != nil {
		// A failed init leaves the chip partially configured; the only
		// recovery is rerunning Init from the reset step.
		return fmt.Errorf("imu manager: device init: %w", err)
	}

	whoami, err := dev.ReadWhoAmI()
	if err != nil {
		return fmt.Errorf("imu manager: who am i: %w", err)
	}
	if whoami != mpu6500.WhoAmIValue {
		log.Printf("imu manager: WARNING: WHO_AM_I = 0x%02X, expected 0x%02X (continuing anyway)",
			whoami, mpu6500.WhoAmIValue)
	} else {
		log.Printf("imu manager: MPU6500 present, WHO_AM_I = 0x%02X", whoami)
	}

	log.Printf("imu manager: accelerometer range ±%dg, gyroscope range ±%d°/s",
		[]int{2, 4, 8, 16}[cfg.IMUAccelRange], []int{250, 500, 1000, 2000}[cfg.IMUGyroRange])

	m.dev = dev
	m.available = true
	return nil
}

// InitSim wires the manager to a simulated device instead of hardware so
// the rest of the stack can run anywhere.
func (m *IMUManager) InitSim() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := config.Get()
	tr := mpu6500.NewSimTransport()
	m.tr = tr
	dev := mpu6500.New(tr,
		mpu6500.AccelRange(cfg.IMUAccelRange),
		mpu6500.GyroRange(cfg.IMUGyroRange))
	if err := dev.Init(); err != nil {
		return fmt.Errorf("imu manager: sim init: %w", err)
	}
	m.dev = dev
	m.source = "sim"
	m.available = true
	log.Println("imu manager: using simulated MPU6500")
	return nil
}

// IsAvailable reports whether Init succeeded.
func (m *IMUManager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Read takes one complete sample: raw accel/gyro/temp plus the scaled
// physical values, stamped with the source and time.
func (m *IMUManager) Read() (imu.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return imu.Reading{}, fmt.Errorf("imu manager: device not initialized")
	}

	rawAccel, err := m.dev.ReadRawAccel()
	if err != nil {
		return imu.Reading{}, err
	}
	rawGyro, err := m.dev.ReadRawGyro()
	if err != nil {
		return imu.Reading{}, err
	}
	rawTemp, err := m.dev.ReadRawTemp()
	if err != nil {
		return imu.Reading{}, err
	}
	accel, err := m.dev.ReadAccel()
	if err != nil {
		return imu.Reading{}, err
	}
	gyro, err := m.dev.ReadGyro()
	if err != nil {
		return imu.Reading{}, err
	}

	return imu.Reading{
		Source: m.source,
		Time:   time.Now().Format(time.RFC3339),
		Raw: imu.Raw{
			Ax: rawAccel.X, Ay: rawAccel.Y, Az: rawAccel.Z,
			Gx: rawGyro.X, Gy: rawGyro.Y, Gz: rawGyro.Z,
			Temp: rawTemp,
		},
		Ax: accel.X, Ay: accel.Y, Az: accel.Z,
		Gx: gyro.X, Gy: gyro.Y, Gz: gyro.Z,
		TempC: imu.CelsiusFromRaw(rawTemp),
	}, nil
}

// Calibrate runs the driver's offset calibration. The device must be held
// stationary and level for the whole run.
func (m *IMUManager) Calibrate(samples uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return fmt.Errorf("imu manager: device not initialized")
	}
	return m.dev.Calibrate(samples)
}

// Offsets returns the current calibration offsets.
func (m *IMUManager) Offsets() mpu6500.Offsets {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return mpu6500.Offsets{}
	}
	return m.dev.Offsets()
}

// SetOffsets applies a previously saved calibration.
func (m *IMUManager) SetOffsets(o mpu6500.Offsets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.available {
		m.dev.SetOffsets(o)
	}
}

// Reinitialize reruns the full init sequence from the reset step.
func (m *IMUManager) Reinitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return fmt.Errorf("imu manager: device not initialized")
	}
	if m.source == "sim" {
		return m.dev.Init()
	}
	return m.initLocked()
}

// ReadRegister reads one register for the debug tooling.
func (m *IMUManager) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return 0, fmt.Errorf("imu manager: device not initialized")
	}
	var buf [1]byte
	if err := m.transport().ReadRegister(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteRegister writes one register for the debug tooling.
func (m *IMUManager) WriteRegister(addr, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return fmt.Errorf("imu manager: device not initialized")
	}
	return m.transport().WriteRegister(addr, value)
}

// ReadAllRegisters dumps every register named in the metadata map.
func (m *IMUManager) ReadAllRegisters() (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available {
		return nil, fmt.Errorf("imu manager: device not initialized")
	}

	out := make(map[byte]byte)
	for _, info := range mpu6500.RegisterMap() {
		var addr byte
		if _, err := fmt.Sscanf(info.Address, "0x%X", &addr); err != nil {
			continue
		}
		var buf [1]byte
		if err := m.transport().ReadRegister(addr, buf[:]); err != nil {
			return nil, fmt.Errorf("imu manager: read 0x%02X: %w", addr, err)
		}
		out[addr] = buf[0]
	}
	return out, nil
}

// GetRegisterMap returns the MPU6500 register metadata.
func (m *IMUManager) GetRegisterMap() []mpu6500.RegisterInfo {
	return mpu6500.RegisterMap()
}

// transport exposes the device's transport for register-level access.
// Callers must hold m.mu.
func (m *IMUManager) transport() mpu6500.Transport {
	return m.tr
}
