package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/entities"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/gateways/amqp"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/gateways/ble"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/gateways/coap"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/logging"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/metrics"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/radio"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/router"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/scheduler"
	"github.com/janael-pinheiro/ble-sensor-gateway/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultConfigFilepath = "configs/gateway.yaml"

func loadConfiguration() (entities.GatewayConfig, error) {
	path := utils.GetValueFromEnvironmentVariable("GATEWAY_CONFIG_FILEPATH", defaultConfigFilepath)
	conf, err := utils.ConfigurationParser(path, entities.DefaultGatewayConfig())
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
	log := logger.Get("gateway")
	log.Info("Starting BLE sensor gateway")

	registry := prometheus.NewRegistry()
	prom := metrics.NewProm(registry)

	central := radio.NewBluetoothCentral(entities.EnvironmentalSensingService)
	engine, err := ble.NewEngine(central, conf, logger.Get("discovery"), prom)
	if err != nil {
		log.Fatalf("Failed to start discovery: %v", err)
	}
	session := ble.NewSessionController(central, logger.Get("session"), prom)
	queryRouter := router.NewRouter(engine, session, conf, logger.Get("router"), prom)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.AMQP.URL != "" {
		handler := amqp.NewAMQPHandler(amqp.NewAmqpConnection(conf.AMQP.URL), logger.Get("amqp"))
		go func() {
			if err := handler.Start(); err != nil {
				log.Errorf("Reading export disabled: %v", err)
			}
		}()
		defer handler.Stop()
		queryRouter.AddSink(amqp.NewMsgPublisher(handler, conf.AMQP.Exchange))
	}

	if conf.Metrics.Address != "" {
		metricsServer := metrics.NewServer(conf.Metrics.Address, registry)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics server: %v", err)
			}
		}()
		defer metricsServer.Close()
	}

	coapServer, err := coap.NewServer(conf.CoAP.Address, queryRouter, logger.Get("coap"))
	if err != nil {
		log.Fatalf("Failed to create CoAP server: %v", err)
	}
	if err := coapServer.Start(); err != nil {
		log.Fatalf("Failed to start CoAP server: %v", err)
	}
	defer coapServer.Stop()

	loop := scheduler.NewLoop(conf.TickInterval, logger.Get("scheduler"))
	loop.Add("router", queryRouter)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("Control loop: %v", err)
	}
	log.Info("Gateway stopped")
}
