package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/bskari/go-mixer/mixer"
	"github.com/bskari/go-mixer/output"
	"github.com/bskari/go-mixer/sensors"
	"github.com/nsf/termbox-go"
)

var dummySentences = []string{
	"$GPRMC,081836,A,3700.00,N,13300.00,W,010.0,090.0,130998,011.3,E*64\n",
	"$GPVTG,054.7,T,034.4,M,005.5,N,007.2,K*4E\n",
	"$GPGGA,134658.00,4300.00,S,04000.00,E,2,09,1.0,1048.47,M,-16.27,M,08,AAAA*6D\n",
}

type dummyReader struct {
}

func (reader dummyReader) Read(buffer []byte) (n int, err error) {
	// Only return data X% of the time
	if rand.Intn(100) < 10 {
		sentence := dummySentences[rand.Intn(len(dummySentences))]
		return copy(buffer, sentence), nil
	} else {
		return 0, nil
	}
}

func openTelemetry(gpsPort string) (*sensors.Telemetry, error) {
	if output.IsPi() {
		return sensors.NewTelemetry(gpsPort)
	}
	return sensors.NewTelemetryFromReader(dummyReader{}), nil
}

func dumpSensors(gpsPort string) {
	telemetry, err := openTelemetry(gpsPort)
	if err != nil {
		panic(err)
	}
	defer telemetry.Close()

	err = termbox.Init()
	if err != nil {
		panic(err)
	}
	defer termbox.Close()

	eventQueue := make(chan termbox.Event)
	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	check := mixer.NewContinuousAutotrim(mixer.DEFAULT_AUTOTRIM_ROTATION_LIMIT, nil)
loop:
	for {
		select {
		case event := <-eventQueue:
			// Check for any key presses
			if event.Type == termbox.EventKey {
				break loop
			}
		default:
			// Read from the sensors
			for i := 0; i < 10; i++ {
				if _, err := telemetry.ParseQueuedMessage(); err != nil {
					break
				}
			}

			termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
			writer := &stringWriter{Line: 0}
			writer.WriteLine("=== GPS ===")
			if !telemetry.HasGpsLock {
				writer.IndentLine("(No lock)")
			}
			position := telemetry.GetPosition()
			writer.IndentLine(fmt.Sprintf("Lat/Long: %0.5f %0.5f", position.Latitude, position.Longitude))
			writer.IndentLine(fmt.Sprintf("Altitude: %0.1f m", position.Altitude))
			writer.IndentLine(fmt.Sprintf("Speed: %0.1f m/s Course: %0.1f Valid: %v",
				telemetry.GetSpeed(), telemetry.Course(), telemetry.HeadingValid()))

			writer.WriteLine("=== Attitude ===")
			attitude, err := telemetry.AttitudeDecidegrees()
			if err != nil {
				writer.WarnLine(fmt.Sprintf("(%v)", err))
			} else {
				writer.IndentLine(fmt.Sprintf("Pitch:%0.1f Roll:%0.1f Yaw:%0.1f",
					attitude.Pitch/10, attitude.Roll/10, attitude.Yaw/10))
				writer.IndentLine(fmt.Sprintf("Rotation: %0.1f deg/s", telemetry.RotationRate()*180/math.Pi))
			}

			writer.WriteLine("=== Autotrim ===")
			in := &mixer.AutotrimInput{
				Attitude:     attitude,
				HeadingValid: telemetry.HeadingValid(),
				RotationRate: telemetry.RotationRate(),
			}
			trimmable := err == nil && check.Trimmable(in, in.RotationRate, 0)
			writer.IndentLine(fmt.Sprintf("Straight and level: %v", trimmable))

			termbox.Flush()
			time.Sleep(time.Millisecond * 250)
		}
	}
}
