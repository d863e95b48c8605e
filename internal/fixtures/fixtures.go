// Package fixtures writes a small but complete set of input files: the five
// datasets and three model artifacts. Tests across packages share it.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// CustomerRows is the customers sheet, header first.
var CustomerRows = [][]any{
	{"customer_id", "age", "annual_spend", "visits", "region"},
	{"C001", 34, 1200.5, 12, "north"},
	{"C002", 41, 830, 5, "south"},
	{"C003", 29, 1530.25, 9, "north"},
	{"C004", 52, 2210, 21, "east"},
	{"C005", 38, 960.75, 7, "north"},
	{"C006", 45, 410, 3, "south"},
}

// Delimited datasets; the files keep the .xls name of the real inputs.
var Delimited = map[string]string{
	"sales_header.xls": "sale_id,customer_id,store_id,total\n" +
		"1,C001,S01,120.5\n2,C002,S02,80\n3,C003,S01,42\n4,C001,S03,19.99\n5,C004,S01,300\n6,C005,S02,55\n",
	"products.xls": "product_id,name,category,price\nP1,Widget,tools,9.5\nP2,Gadget,tools,12\nP3,Snack,food,1.2\n",
	"stores.xls":   "store_id;city;sqft\nS01;Leeds;1200\nS02;York;950\nS03;Hull;700\n",
	"product_promotion_sales.xls": "promotion_id,product_id,units,discount\n" +
		"PR1,P1,10,2.5\nPR2,P2,4,1\nPR3,P1,6,0.5\n",
}

// Models holds artifact bodies keyed by file name.
var Models = map[string]string{
	"lr_model.json": `{"estimator": "LinearRegression", "coef": [4.5, 18.25, -2.0]}`,
	"rf_model.json": `{"estimator": "RandomForestRegressor", "feature_importances": [0.2, 0.5, 0.3]}`,
	"gb_model.json": "estimator: GradientBoostingRegressor\n" +
		"feature_importances: [0.6, 0.1, 0.3]\n" +
		"feature_names_in: [annual_spend, age, visits]\n",
}

// WriteData writes the five datasets into dir. Customers is a real workbook.
func WriteData(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeWorkbook(filepath.Join(dir, "customers.xls"), CustomerRows); err != nil {
		return err
	}
	for name, body := range Delimited {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteModels writes the three artifacts into dir.
func WriteModels(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, body := range Models {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Write lays out root/data and root/models and returns both paths.
func Write(root string) (dataDir, modelsDir string, err error) {
	dataDir = filepath.Join(root, "data")
	modelsDir = filepath.Join(root, "models")
	if err := WriteData(dataDir); err != nil {
		return "", "", fmt.Errorf("write data: %w", err)
	}
	if err := WriteModels(modelsDir); err != nil {
		return "", "", fmt.Errorf("write models: %w", err)
	}
	return dataDir, modelsDir, nil
}

func writeWorkbook(path string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				return err
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
