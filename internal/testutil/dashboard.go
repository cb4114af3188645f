package testutil

import (
	"github.com/spektr-org/statboard/catalog"
)

// Dashboard returns the datasets of a small welfare dashboard, keyed by
// dataset name the way the statistics API serves them.
//
//	M-1 Claims           year × region × gender × age, blocks [gender, age], related to M-2
//	M-2 Payments         year × region
//	M-3 Total allowance  year only, region rows excluded from the total
//	M-4 Unrelated        year × region
func Dashboard() map[string][]catalog.Record {
	return map[string][]catalog.Record{
		"dimFilters": {
			{"Filter_ID": "f-year", "Filter_Name": "Year", "DB_Attributes": "year"},
			{"Filter_ID": "f-region", "Filter_Name": "Region", "DB_Attributes": "region"},
			{"Filter_ID": "f-gender", "Filter_Name": "Gender", "DB_Attributes": "gender"},
			{"Filter_ID": "f-age", "Filter_Name": "Age", "DB_Attributes": "age"},
		},
		"categories": {
			{"Category_ID": "c1", "Category_Name": "Welfare", "Description": "Allowances", "Chip_ID": "ch1"},
			{"Category_ID": "c2", "Category_Name": "Housing"},
		},
		"chips": {
			{"Chip_ID": "ch1", "Chip_Name": "Claims vs payments", "Chip_Description": "By region", "Category_ID": "c1", "Measure ID": "M-1,M-2", "Filter_ID": "f-region"},
			{"Chip_ID": "ch2", "Chip_Name": "Broken"},
		},
		"layersMeasures": {
			{
				"Measure ID": "M-1", "Measure Name": "Claims", "Category_ID": "c1",
				"Filters": "f-year, f-region, f-gender, f-age", "Blocked Filters": "[f-gender, f-age]",
				"Measure_Relations": "M-2", "Graph": "column", "X Axis Default": "f-year",
				"Default Value Attribute": "value",
			},
			{
				"Measure ID": "M-2", "Measure Name": "Payments", "Category_ID": "c1",
				"Filters": "f-year, f-region", "Graph": "line", "X Axis Default": "f-year",
				"Default Value Attribute": "value",
			},
			{
				"Measure ID": "M-3", "Measure Name": "Total allowance", "Category_ID": "c1",
				"Filters": "f-year", "Blocked Filters": "f-region", "Graph": "line",
				"X Axis Default": "f-year", "Default Value Attribute": "value",
			},
			{
				"Measure ID": "M-4", "Measure Name": "Unrelated", "Category_ID": "c1",
				"Filters": "f-year, f-region", "Graph": "column", "X Axis Default": "f-year",
				"Default Value Attribute": "value",
			},
			{
				"Measure ID": "M-9", "Measure Name": "Rent support", "Category_ID": "c2",
				"Filters": "f-year", "Graph": "column", "X Axis Default": "f-year",
				"Default Value Attribute": "value",
			},
		},
		"1": {
			{"year": 2020.0, "region": "North", "gender": "M", "age": "18-30", "value": 10.0},
			{"year": 2020.0, "region": "North", "gender": "F", "age": "31-60", "value": 20.0},
			{"year": 2020.0, "region": "South", "gender": "M", "age": "18-30", "value": 5.0},
			{"year": 2021.0, "region": "North", "gender": "F", "age": "18-30", "value": 1.0},
			{"year": 2021.0, "region": "South", "gender": "F", "age": "31-60", "value": 7.0},
		},
		"2": {
			{"year": 2020.0, "region": "North", "value": 100.0},
			{"year": 2020.0, "region": "South", "value": 50.0},
			{"year": 2021.0, "region": "North", "value": 80.0},
		},
		"3": {
			{"year": 2020.0, "value": 0.4},
			{"year": 2020.0, "region": "North", "value": 0.9},
			{"year": 2021.0, "value": 0.5},
		},
		"4": {
			{"year": 2020.0, "region": "North", "value": 3.0},
		},
		"9": {
			{"year": 2020.0, "value": 12.0},
		},
	}
}
