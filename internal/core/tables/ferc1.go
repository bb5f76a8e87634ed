package tables

import (
	"github.com/JonMunkholm/ferc1/internal/core"
	"github.com/JonMunkholm/ferc1/internal/store"
)

// plantInServiceFirstYear is the first year the plant in service schedule
// has a consistent layout.
const plantInServiceFirstYear = 2007

func named() store.Expr { return store.C("plant_name", store.OpNe, "") }

func nonZero(columns ...string) store.Or {
	or := make(store.Or, len(columns))
	for i, c := range columns {
		or[i] = store.C(c, store.OpNe, 0)
	}
	return or
}

func init() {
	core.Register(core.TableDefinition{
		Key:         "fuel_ferc1",
		Source:      "f1_fuel",
		Description: "Fuel consumed by steam plants, with a fuel, a positive quantity and a plant name",
		Filter: store.And{
			store.C("fuel", store.OpNe, ""),
			store.C("fuel_quantity", store.OpGt, 0),
			named(),
		},
	})

	core.Register(core.TableDefinition{
		Key:         "plants_steam_ferc1",
		Source:      "f1_steam",
		Description: "Large steam plants with a positive capacity and a plant name",
		Filter: store.And{
			store.C("tot_capacity", store.OpGt, 0),
			named(),
		},
	})

	core.Register(core.TableDefinition{
		Key:         "plants_small_ferc1",
		Source:      "f1_gnrt_plant",
		Description: "Small generating plants with a plant name and at least one reported quantity",
		Filter: store.And{
			named(),
			nonZero(
				"capacity_rating", "net_demand", "net_generation",
				"plant_cost", "plant_cost_mw", "operation",
				"expns_fuel", "expns_maint", "fuel_cost",
			),
		},
	})

	core.Register(core.TableDefinition{
		Key:         "plants_hydro_ferc1",
		Source:      "f1_hydro",
		Description: "Hydroelectric plants with a plant name",
		Filter:      named(),
	})

	core.Register(core.TableDefinition{
		Key:         "plants_pumped_storage_ferc1",
		Source:      "f1_pumped_storage",
		Description: "Pumped storage plants with a plant name",
		Filter:      named(),
	})

	core.Register(core.TableDefinition{
		Key:         "plant_in_service_ferc1",
		Source:      "f1_plant_in_srvce",
		Description: "Utility plant in service, from 2007 on",
		Filter:      store.C("report_year", store.OpGe, plantInServiceFirstYear),
	})

	core.Register(core.TableDefinition{
		Key:         "purchased_power_ferc1",
		Source:      "f1_purchased_pwr",
		Description: "Purchased power transactions",
	})

	core.Register(core.TableDefinition{
		Key:         "accumulated_depreciation_ferc1",
		Source:      "f1_accumdepr_prvsn",
		Description: "Accumulated provision for depreciation",
	})
}
