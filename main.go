package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bskari/go-mixer/mixer"
	"github.com/bskari/go-mixer/output"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

func main() {
	configPtr := flag.String("config", "conf.toml", "Mixer configuration, TOML or YAML")
	dumpPtr := flag.Bool("dump", false, "Dump the mixer tables and wire values")
	simulatePtr := flag.Bool("simulate", false, "Fly the mixer from the keyboard")
	servosPtr := flag.Bool("servos", false, "Sweep the servos")
	sensorsPtr := flag.Bool("sensors", false, "Dump the sensor data")
	outputPtr := flag.String("output", "none", "Output driver: none, rpio, pca9685 or maestro")
	portPtr := flag.String("port", "/dev/ttyS0", "GPS serial port, or the Maestro port with -output maestro")
	servoPinsPtr := flag.String("servo-pins", "-1,-1,13", "BCM pins for -output rpio servos, -1 for none")
	motorPinsPtr := flag.String("motor-pins", "18", "BCM pins for -output rpio motors")
	logLevelPtr := flag.String("loglevel", "INFO", "DEBUG, INFO, NOTICE, WARNING or ERROR")
	flag.Parse()

	os.Mkdir("logs", 0755)

	level, err := logging.LogLevel(*logLevelPtr)
	if err != nil {
		fmt.Printf("Bad log level %v: %v\n", *logLevelPtr, err)
		os.Exit(1)
	}
	fileLog, err := os.OpenFile(getLogName(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		panic(err)
	}
	defer fileLog.Close()
	// termbox owns the terminal in these modes
	console := !*simulatePtr && !*sensorsPtr
	mixer.ConfigureLogger(fileLog, level, console)

	if *sensorsPtr {
		dumpSensors(*portPtr)
		return
	}
	if !*dumpPtr && !*simulatePtr && !*servosPtr {
		fmt.Println("Nothing to do")
		return
	}

	config, store, err := loadConfiguration(*configPtr)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if *dumpPtr {
		dumpMixer(config)
		return
	}

	pins := pinConfig{}
	if pins.servos, err = parsePins(*servoPinsPtr); err != nil {
		fmt.Printf("Bad -servo-pins: %v\n", err)
		os.Exit(1)
	}
	if pins.motors, err = parsePins(*motorPinsPtr); err != nil {
		fmt.Printf("Bad -motor-pins: %v\n", err)
		os.Exit(1)
	}
	driver, closer, err := openOutput(*outputPtr, *portPtr, pins, config)
	if err != nil {
		fmt.Printf("Couldn't open output %v: %v\n", *outputPtr, err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	mix, err := mixer.New(config, store)
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	if *simulatePtr {
		simulate(mix, driver)
	} else {
		testServos(mix, driver)
	}
}

// loadConfiguration falls back to the built in airplane when there's no
// file, and applies any centers that autotrim saved earlier
func loadConfiguration(path string) (*mixer.Configuration, mixer.TrimStore, error) {
	var config *mixer.Configuration
	if _, err := os.Stat(path); os.IsNotExist(err) {
		mixer.Logger.Warningf("No configuration at %v, using defaults", path)
		config = mixer.Default()
	} else {
		config, err = mixer.LoadConfigurationFile(path)
		if err != nil {
			return nil, nil, err
		}
	}

	if config.Autotrim.CentersFile == "" {
		return config, mixer.NopTrimStore{}, nil
	}
	store := mixer.NewFileTrimStore(config.Autotrim.CentersFile)
	centers, err := store.LoadServoCenters()
	if err == nil {
		config.ApplyServoCenters(centers)
		mixer.Logger.Infof("Loaded servo centers %v", centers)
	} else if !os.IsNotExist(errors.Cause(err)) {
		mixer.Logger.Warningf("Ignoring saved servo centers: %v", err)
	}
	return config, store, nil
}

type pinConfig struct {
	servos []int
	motors []int
}

func parsePins(text string) ([]int, error) {
	pins := []int{}
	for _, field := range strings.Split(text, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		pin, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "pin %q", field)
		}
		pins = append(pins, pin)
	}
	return pins, nil
}

func openOutput(name string, port string, pins pinConfig, config *mixer.Configuration) (mixer.OutputDriver, io.Closer, error) {
	switch name {
	case "none":
		return output.Nop{}, nil, nil
	case "rpio":
		if !output.IsPi() {
			return nil, nil, errors.New("not a Pi")
		}
		pwm, err := output.NewRpioPwm(pins.servos, pins.motors, config.Motor.Protocol)
		if err != nil {
			return nil, nil, err
		}
		return pwm, pwm, nil
	case "pca9685":
		if config.Motor.Protocol.IsDigital() {
			return nil, nil, errors.Wrapf(output.ErrPwmOutputInit, "PCA9685 can't send %v", config.Motor.Protocol)
		}
		if _, err := host.Init(); err != nil {
			return nil, nil, errors.Wrap(err, "initializing periph")
		}
		bus, err := i2creg.Open("")
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening I2C bus")
		}
		// Every channel shares the motors' frequency
		board, err := output.NewPca9685(bus, config.Motor.Protocol.UpdateRate())
		if err != nil {
			bus.Close()
			return nil, nil, err
		}
		return board, bus, nil
	case "maestro":
		if config.Motor.Protocol.IsDigital() {
			return nil, nil, errors.Wrapf(output.ErrPwmOutputInit, "Maestro can't send %v", config.Motor.Protocol)
		}
		maestro, closer, err := output.OpenMaestro(port, mixer.MAX_SUPPORTED_SERVOS)
		if err != nil {
			return nil, nil, err
		}
		return maestro, closer, nil
	}
	return nil, nil, errors.Errorf("unknown output %q", name)
}

func getLogName() string {
	now := time.Now()
	logName := fmt.Sprintf("%04d-%02d-%02d-%02d-%02d-%02d-mixer.log", now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second())
	return "logs/" + logName
}
