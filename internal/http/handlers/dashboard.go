package handlers

import (
	"net/http"
	"time"

	"github.com/dialboard/server/internal/validator"
	"github.com/dialboard/server/pkg/client"
	"github.com/dialboard/server/pkg/render"
	"github.com/labstack/echo/v4"
)

type gaugeKeyInput struct {
	Key string `param:"key" validate:"required"`
}

func (b *Builder) GetDashboard(ec echo.Context) error {
	snapshot := b.gauges.Snapshot()
	result := render.BuildDashboard(snapshot, b.history.All(), time.Now().UTC())
	return ec.JSON(http.StatusOK, result)
}

func (b *Builder) ListGauges(ec echo.Context) error {
	snapshot := b.gauges.Snapshot()
	result := client.ListGaugesOutput{
		AsOf:   snapshot.AsOf,
		Result: []client.Gauge{},
	}
	for _, gauge := range snapshot.Gauges {
		result.Result = append(result.Result, render.ToGauge(gauge))
	}
	return ec.JSON(http.StatusOK, result)
}

func (b *Builder) GetGauge(ec echo.Context) error {
	var payload gaugeKeyInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := validator.Validator.Struct(payload); err != nil {
		return err
	}

	snapshot := b.gauges.Snapshot()
	gauge, err := b.gauges.GetGauge(payload.Key)
	if err != nil {
		return err
	}
	result := render.BuildGaugeView(*gauge, b.history.Series(payload.Key), snapshot.AsOf, time.Now().UTC())
	return ec.JSON(http.StatusOK, &result)
}

func (b *Builder) GetGaugeHistory(ec echo.Context) error {
	var payload gaugeKeyInput
	if err := ec.Bind(&payload); err != nil {
		return err
	}
	if err := validator.Validator.Struct(payload); err != nil {
		return err
	}

	series := b.history.Series(payload.Key)
	result := client.GetHistoryOutput{
		Key:    payload.Key,
		Result: []client.HistoryPoint{},
	}
	for _, point := range series {
		result.Result = append(result.Result, client.HistoryPoint{
			Week:  point.Week,
			Value: point.Value,
		})
	}
	return ec.JSON(http.StatusOK, result)
}
