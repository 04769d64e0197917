// Command ezo-shell is an interactive console for Atlas Scientific EZO
// circuits. Input is passed to the circuit as-is, except for the shell
// commands list_addr, address and poll.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/sirupsen/logrus"

	"github.com/hydropath/atlas-ezo/ezo"
	"github.com/hydropath/atlas-ezo/internal/config"
	"github.com/hydropath/atlas-ezo/internal/publish"
	"github.com/hydropath/atlas-ezo/transports"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	busNum := flag.Int("bus", -1, "I2C bus number (overrides config)")
	address := flag.Int("address", -1, "device address (overrides config)")
	serialPort := flag.String("serial", "", "serial port for a UART-mode circuit (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *busNum >= 0 {
		cfg.Bus.Number = *busNum
	}
	if *address >= 0 {
		cfg.Bus.Address = *address
	}
	if *serialPort != "" {
		cfg.Bus.SerialPort = *serialPort
	}

	log := setupLogger(cfg.Log)

	bus, err := openBus(cfg)
	if err != nil {
		log.Fatalf("open bus: %v", err)
	}
	defer bus.Close()

	log.WithFields(logrus.Fields{
		"bus":     cfg.Bus.Number,
		"address": bus.Address(),
	}).Info("bus open")

	runShell(bus, cfg, log)
}

func setupLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func openBus(cfg *config.Config) (*ezo.Bus, error) {
	if cfg.Bus.SerialPort != "" {
		dev, err := transports.OpenSerial(transports.SerialConfig{
			Port:     cfg.Bus.SerialPort,
			BaudRate: cfg.Bus.BaudRate,
		})
		if err != nil {
			return nil, err
		}
		return ezo.Open(ezo.BusConfig{Transport: dev, Address: cfg.Bus.Address})
	}

	return ezo.Open(ezo.BusConfig{Bus: cfg.Bus.Number, Address: cfg.Bus.Address})
}

func runShell(bus *ezo.Bus, cfg *config.Config, log *logrus.Logger) {
	shell := ishell.New()
	shell.Println("Atlas Scientific EZO shell")
	shell.Println("Anything you type is sent to the circuit, except: list_addr, address N, poll SECONDS")

	shell.AddCmd(&ishell.Cmd{
		Name: "list_addr",
		Help: "probe the bus and list responding device addresses",
		Func: func(c *ishell.Context) {
			addrs, err := bus.Scan(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			for _, addr := range addrs {
				c.Println(addr)
			}
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "address",
		Help: "ADDR  select which device address to talk to",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("usage: address ADDR"))
				return
			}
			addr, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("address must be an integer: %v", err))
				return
			}
			if err := bus.SelectAddress(addr); err != nil {
				c.Err(err)
				return
			}
			c.Printf("address set to %d\n", addr)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "poll",
		Help: "[SECONDS]  poll a reading continuously, ctrl-c to stop; defaults to the configured period_seconds",
		Func: func(c *ishell.Context) {
			pollCmd(c, bus, cfg, log)
		},
	})

	shell.NotFound(func(c *ishell.Context) {
		cmd := strings.Join(c.RawArgs, " ")
		reply, err := bus.Query(context.Background(), cmd)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(reply)
	})

	shell.Run()
}

func pollCmd(c *ishell.Context, bus *ezo.Bus, cfg *config.Config, log *logrus.Logger) {
	period, err := pollPeriod(c.Args, cfg)
	if err != nil {
		c.Err(err)
		return
	}

	poller := ezo.NewPoller(bus, period)
	if poller.Period() != period {
		c.Printf("polling period is shorter than the processing delay, using %s\n", poller.Period())
	}

	info, err := bus.Query(context.Background(), "I")
	if err != nil {
		c.Err(err)
		return
	}
	sensor := info
	if parts := strings.Split(info, ","); len(parts) > 1 {
		sensor = parts[1]
	}
	c.Printf("polling %s sensor every %s, press ctrl-c to stop\n", sensor, poller.Period())

	var pub *publish.MQTT
	if cfg.MQTT.Broker != "" {
		pub, err = publish.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			log.Warnf("mqtt publishing disabled: %v", err)
			pub = nil
		} else {
			defer pub.Close()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	out := make(chan ezo.Reading)
	go func() {
		poller.Run(ctx, out)
		close(out)
	}()

	for r := range out {
		if r.Err != nil {
			// print and keep polling; the next cycle may succeed
			c.Err(r.Err)
			continue
		}
		c.Println(r.Value)
		if pub != nil {
			if err := pub.Publish(r); err != nil {
				log.Warnf("publish reading: %v", err)
			}
		}
	}
	c.Println("continuous polling stopped")
}

// pollPeriod resolves the polling period: an explicit SECONDS argument wins,
// otherwise the configured period_seconds applies.
func pollPeriod(args []string, cfg *config.Config) (time.Duration, error) {
	switch len(args) {
	case 0:
		return cfg.MQTT.Period(), nil
	case 1:
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return 0, fmt.Errorf("seconds must be a number: %v", err)
		}
		return secsToDuration(secs), nil
	default:
		return 0, fmt.Errorf("usage: poll [SECONDS]")
	}
}

func secsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
