// Package sensors reads the GPS and LSM303 that feed autotrim's straight
// and level check
package sensors

import (
	"bufio"
	"io"
	"math"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/bskari/go-lsm303"
	"github.com/bskari/go-mixer/mixer"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var Logger = logging.MustGetLogger("sensors")

// When the plane is level, the accelerometer gives these readings
const PITCH_OFFSET_D = -5.2
const ROLL_OFFSET_D = 2.3

// Below this the GPS course is noise
const MIN_HEADING_SPEED_MPS = 1.0

const KNOTS_TO_MPS = 1852.0 / 3600.0

var ErrNoImu = errors.New("no accelerometer or magnetometer attached")

type Degrees = float32
type Meters = float32

// Coordinate is separate from Degrees because I want to use float64 for extra
// precision, but it's overkill for measuring angles
type Coordinate = float64
type MetersPerSecond = float64

type Point struct {
	Latitude  Coordinate
	Longitude Coordinate
	Altitude  Meters
}

type Axes struct {
	Pitch Degrees
	Roll  Degrees
	Yaw   Degrees
}

func ToDegrees(radians float32) Degrees {
	return radians * 180 / math.Pi
}

type sensor interface {
	SenseRaw() (int16, int16, int16, error)
}

// The number of sensor readings to average together
const sensorFilterAverageCount = 3

type sensorFilter struct {
	s                sensor
	previousReadings [sensorFilterAverageCount][3]int32
	name             string
}

func (filter *sensorFilter) SenseRaw() (int16, int16, int16, error) {
	if filter.s == nil {
		return 0, 0, 0, ErrNoImu
	}
	x, y, z, err := filter.s.SenseRaw()
	if err != nil {
		return 0, 0, 0, err
	}
	Logger.Debugf("%v: %v %v %v", filter.name, x, y, z)

	// Move the previous readings down
	const LEN = len(filter.previousReadings)
	copy(filter.previousReadings[:LEN-1], filter.previousReadings[1:])
	filter.previousReadings[LEN-1] = [3]int32{int32(x), int32(y), int32(z)}

	var sums [3]int32
	for i := 0; i < LEN; i++ {
		for j := 0; j < 3; j++ {
			sums[j] += filter.previousReadings[i][j]
		}
	}
	return int16(sums[0] / int32(LEN)), int16(sums[1] / int32(LEN)), int16(sums[2] / int32(LEN)), nil
}

type Telemetry struct {
	HasGpsLock    bool
	recentPoint   Point
	recentSpeed   MetersPerSecond
	recentCourse  Degrees
	gps           *bufio.Reader
	accelerometer sensorFilter
	magnetometer  sensorFilter
	closers       []io.Closer
	timestamp     int64

	previousAxes Axes
	previousTime time.Time
	rotationRate float64
}

// NewTelemetry opens the GPS UART and the LSM303 on the default I2C bus
func NewTelemetry(gpsPort string) (*Telemetry, error) {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing periph")
	}

	config := serial.Config{Name: gpsPort, Baud: 9600, ReadTimeout: time.Millisecond * 0}
	gps, err := serial.OpenPort(&config)
	if err != nil {
		return nil, errors.Wrapf(err, "opening GPS on %s", gpsPort)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		gps.Close()
		return nil, errors.Wrap(err, "opening I2C bus")
	}
	telemetry, err := newTelemetry(gps, bus)
	if err != nil {
		gps.Close()
		bus.Close()
		return nil, err
	}
	telemetry.closers = []io.Closer{gps, bus}
	return telemetry, nil
}

func newTelemetry(gps io.Reader, bus i2c.Bus) (*Telemetry, error) {
	accelerometer, err := lsm303.NewAccelerometer(bus, &lsm303.DefaultAccelerometerOpts)
	if err != nil {
		return nil, errors.Wrap(err, "opening LSM303 accelerometer")
	}
	magnetometer, err := lsm303.NewMagnetometer(bus, &lsm303.DefaultMagnetometerOpts)
	if err != nil {
		return nil, errors.Wrap(err, "opening LSM303 magnetometer")
	}
	telemetry := NewTelemetryFromReader(gps)
	telemetry.accelerometer.s = accelerometer
	telemetry.magnetometer.s = magnetometer
	return telemetry, nil
}

// NewTelemetryFromReader reads NMEA sentences from any reader and has no
// IMU. Used off the Pi and in tests.
func NewTelemetryFromReader(gps io.Reader) *Telemetry {
	return &Telemetry{
		recentPoint:   Point{Latitude: 40.0, Longitude: -105.2, Altitude: 1655},
		gps:           bufio.NewReader(gps),
		accelerometer: sensorFilter{name: "accel"},
		magnetometer:  sensorFilter{name: "mag"},
	}
}

func (telemetry *Telemetry) Close() error {
	var err error
	for _, closer := range telemetry.closers {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

func (telemetry *Telemetry) HasImu() bool {
	return telemetry.accelerometer.s != nil && telemetry.magnetometer.s != nil
}

func (telemetry *Telemetry) GetAxes() (Axes, error) {
	xRawA, yRawA, zRawA, err := telemetry.accelerometer.SenseRaw()
	if err != nil {
		return Axes{0, 0, 0}, err
	}

	xRawM, yRawM, zRawM, err := telemetry.magnetometer.SenseRaw()
	if err != nil {
		return Axes{0, 0, 0}, err
	}
	axes := computeAxes(xRawA, yRawA, zRawA, xRawM, yRawM, zRawM)
	telemetry.updateRotation(axes, time.Now())
	return axes, nil
}

func computeAxes(xRawA, yRawA, zRawA, xRawM, yRawM, zRawM int16) Axes {
	// Avoid divide by zero problems
	if zRawA == 0 {
		zRawA = 1
	}
	y2 := int32(yRawA) * int32(yRawA)
	z2 := int32(zRawA) * int32(zRawA)

	// Tilt compensated compass readings
	pitch_r := math.Atan2(-float64(xRawA), math.Sqrt(float64(y2+z2)))
	roll_r := math.Atan2(float64(yRawA), float64(zRawA))
	xHorizontal := float64(xRawM)*math.Cos(pitch_r) + float64(yRawM)*math.Sin(roll_r)*math.Sin(pitch_r) - float64(zRawM)*math.Cos(roll_r)*math.Sin(pitch_r)
	yHorizontal := float64(yRawM)*math.Cos(roll_r) + float64(zRawM)*math.Sin(roll_r)

	// The roll calculation assumes that -x is forward, +y is right, and
	// +z is down
	return Axes{
		Pitch: ToDegrees(float32(pitch_r)),
		Roll:  ToDegrees(float32(roll_r)),
		Yaw:   ToDegrees(float32(math.Atan2(yHorizontal, xHorizontal))),
	}
}

// There's no gyro on the LSM303, so the rotation rate is the change in
// attitude between readings
func (telemetry *Telemetry) updateRotation(axes Axes, now time.Time) {
	if !telemetry.previousTime.IsZero() {
		seconds := now.Sub(telemetry.previousTime).Seconds()
		if seconds > 0 {
			pitch := float64(axes.Pitch - telemetry.previousAxes.Pitch)
			roll := float64(axes.Roll - telemetry.previousAxes.Roll)
			yaw := float64(wrapDegrees(axes.Yaw - telemetry.previousAxes.Yaw))
			degrees := math.Sqrt(pitch*pitch + roll*roll + yaw*yaw)
			telemetry.rotationRate = degrees * math.Pi / 180 / seconds
		}
	}
	telemetry.previousAxes = axes
	telemetry.previousTime = now
}

func wrapDegrees(degrees Degrees) Degrees {
	for degrees > 180 {
		degrees -= 360
	}
	for degrees < -180 {
		degrees += 360
	}
	return degrees
}

// RotationRate is the magnitude of the last attitude change, radians per
// second
func (telemetry *Telemetry) RotationRate() float64 {
	return telemetry.rotationRate
}

// AttitudeDecidegrees returns the level-corrected attitude the way the mixer
// wants it
func (telemetry *Telemetry) AttitudeDecidegrees() (mixer.Attitude, error) {
	axes, err := telemetry.GetAxes()
	if err != nil {
		return mixer.Attitude{}, err
	}
	return mixer.Attitude{
		Roll:  float64(axes.Roll-ROLL_OFFSET_D) * 10,
		Pitch: float64(axes.Pitch-PITCH_OFFSET_D) * 10,
		Yaw:   float64(axes.Yaw) * 10,
	}, nil
}

// Parse any waiting GPS messages. Users need not call this, but may.
func (telemetry *Telemetry) ParseQueuedMessage() (bool, error) {
	line, err := telemetry.gps.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	Logger.Debug(line)
	telemetry.parseSentence(line)
	return true, nil
}

func (telemetry *Telemetry) GetPosition() Point {
	return telemetry.recentPoint
}

func (telemetry *Telemetry) GetTimestamp() int64 {
	return telemetry.timestamp
}

func (telemetry *Telemetry) GetSpeed() MetersPerSecond {
	return telemetry.recentSpeed
}

// Course over ground from the GPS, degrees from true north
func (telemetry *Telemetry) Course() Degrees {
	return telemetry.recentCourse
}

// HeadingValid is true once the GPS has a fix and we're moving fast enough
// for the course to mean something
func (telemetry *Telemetry) HeadingValid() bool {
	return telemetry.HasGpsLock && telemetry.recentSpeed > MIN_HEADING_SPEED_MPS
}

// The talker ID varies between receivers, e.g. $GPRMC or $GNRMC
func sentenceType(sentence string) string {
	if len(sentence) < 6 || sentence[0] != '$' {
		return ""
	}
	return sentence[3:6]
}

func (telemetry *Telemetry) parseSentence(sentence string) {
	// We see GSV, RMC, VTG, GGA, GSA and GLL messages
	// GSV is satellites in view, not useful
	// RMC has validity, speed in knots and course
	// VTG has course and speed in knots and km/h
	// GGA has latitude, longitude, and altitude
	// GSA is active satellites, not useful
	// GLL is just latitude and longitude
	switch sentenceType(sentence) {
	case "RMC", "GGA", "VTG":
	default:
		return
	}

	parsed, err := nmea.Parse(sentence)
	if err != nil {
		Logger.Warningf("Failed to parse GPS message '%v': %v", sentence, err)
		return
	}
	switch message := parsed.(type) {
	case nmea.RMC:
		telemetry.HasGpsLock = (message.Validity == nmea.ValidRMC)
		telemetry.recentPoint.Latitude = message.Latitude
		telemetry.recentPoint.Longitude = message.Longitude
		telemetry.recentSpeed = MetersPerSecond(message.Speed * KNOTS_TO_MPS)
		telemetry.recentCourse = Degrees(message.Course)
		if telemetry.timestamp == 0 {
			t := time.Date(
				message.Date.YY+2000,
				time.Month(message.Date.MM),
				message.Date.DD,
				message.Time.Hour,
				message.Time.Minute,
				message.Time.Second,
				0,
				time.UTC,
			)
			telemetry.timestamp = t.Unix()
		}
	case nmea.GGA:
		telemetry.recentPoint.Latitude = message.Latitude
		telemetry.recentPoint.Longitude = message.Longitude
		telemetry.recentPoint.Altitude = float32(message.Altitude)
	case nmea.VTG:
		telemetry.recentSpeed = MetersPerSecond(message.GroundSpeedKPH * 1000.0 / 3600.0)
		telemetry.recentCourse = Degrees(message.TrueTrack)
	}
}
