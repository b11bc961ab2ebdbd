package coordinator

import (
	"fmt"

	"tgnvoda/internal/scrapers/tgnvoda"
)

const (
	manufacturer = "MUP Vodokanal"
	model        = "LK"
	unitRUB      = "RUB"
)

type SensorDescription struct {
	Key   string
	Name  string
	Icon  string
	Unit  string
	Value func(data tgnvoda.AccountBilling) *float64
}

var Sensors = []SensorDescription{
	{
		Key:  "to_pay",
		Name: "Vodokanal To Pay",
		Icon: "mdi:cash",
		Unit: unitRUB,
		Value: func(data tgnvoda.AccountBilling) *float64 {
			return data.Billing.ToPayNow
		},
	},
	{
		Key:  "accrued",
		Name: "Vodokanal Accrued",
		Icon: "mdi:receipt",
		Unit: unitRUB,
		Value: func(data tgnvoda.AccountBilling) *float64 {
			return data.Billing.AccruedInPeriod
		},
	},
	{
		Key:  "paid",
		Name: "Vodokanal Paid",
		Icon: "mdi:cash-check",
		Unit: unitRUB,
		Value: func(data tgnvoda.AccountBilling) *float64 {
			return data.Billing.PaidAmount
		},
	},
}

type DeviceInfo struct {
	Identifier   string `json:"identifier"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
}

type SensorState struct {
	UniqueID  string   `json:"unique_id"`
	Name      string   `json:"name"`
	Icon      string   `json:"icon"`
	Unit      string   `json:"unit"`
	Value     *float64 `json:"value"`
	Available bool     `json:"available"`
	// Attributes is the whole snapshot the value was read from.
	Attributes *tgnvoda.AccountBilling `json:"attributes"`
	Device     DeviceInfo              `json:"device"`
}

// Project renders every sensor out of a snapshot, it holds no state of its own.
func Project(entryID, accountID string, snap Snapshot) []SensorState {
	if snap.Data != nil && snap.Data.Account.AccountID != "" {
		accountID = snap.Data.Account.AccountID
	}
	device := DeviceInfo{
		Identifier:   fmt.Sprintf("acc_%s", accountID),
		Name:         fmt.Sprintf("TGN Voda %s", accountID),
		Manufacturer: manufacturer,
		Model:        model,
	}

	out := make([]SensorState, 0, len(Sensors))
	for _, desc := range Sensors {
		state := SensorState{
			UniqueID:   fmt.Sprintf("%s_%s_%s", entryID, desc.Key, accountID),
			Name:       desc.Name,
			Icon:       desc.Icon,
			Unit:       desc.Unit,
			Available:  snap.Available(),
			Attributes: snap.Data,
			Device:     device,
		}
		if snap.Data != nil {
			state.Value = desc.Value(*snap.Data)
		}
		out = append(out, state)
	}
	return out
}
