package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/logging"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/metrics"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/peripheral"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/scheduler"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultConfigFilepath = "configs/sensor.yaml"

func loadConfiguration() (entities.SensorConfig, error) {
	path := utils.GetValueFromEnvironmentVariable("SENSOR_CONFIG_FILEPATH", defaultConfigFilepath)
	conf, err := utils.ConfigurationParser(path, entities.DefaultSensorConfig())
	if err != nil {
		return conf, errors.Wrapf(err, "load %s", path)
	}
	conf.Log.Level = utils.GetValueFromEnvironmentVariable("LOG_LEVEL", conf.Log.Level)
	conf.ApplyDefaults()
	return conf, conf.Validate()
}

func main() {
	conf, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogrus(conf.Log.Level, os.Stdout).WithFormat(conf.Log.Format)
	log := logger.Get("sensor")
	log.Infof("Starting sensor node %s", conf.DeviceName)

	registry := prometheus.NewRegistry()
	prom := metrics.NewProm(registry)

	bluetooth := radio.NewBluetoothPeripheral(conf.AdvertisingInterval)
	source := peripheral.NewRandomSource(time.Now().UnixNano())
	node, err := peripheral.NewNode(bluetooth, conf, source, logger.Get("node"), prom)
	if err != nil {
		log.Fatalf("Failed to create node: %v", err)
	}
	if err := node.Start(); err != nil {
		log.Fatalf("Failed to start node: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Metrics.Address != "" {
		metricsServer := metrics.NewServer(conf.Metrics.Address, registry)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics server: %v", err)
			}
		}()
		defer metricsServer.Close()
	}

	loop := scheduler.NewLoop(conf.TickInterval, logger.Get("scheduler"))
	loop.Add("node", node)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Control loop: %v", err)
	}
	if err := bluetooth.StopAdvertising(); err != nil {
		log.Debugf("stop advertising: %v", err)
	}
	log.Info("Sensor node stopped")
}
