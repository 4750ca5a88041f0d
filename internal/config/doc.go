// Package config loads bondscope configuration.
//
// Values are layered, lowest precedence first:
//
//	1. Built-in defaults (Default)
//	2. A YAML file named by BONDSCOPE_CONFIG, or config.yaml / configs/config.yaml
//	3. BONDSCOPE_* environment variables, after a .env file is loaded
//
// Nested sections map to underscored variable names:
//
//	BONDSCOPE_SERVER_PORT=8080
//	BONDSCOPE_DATA_PURCHASES_PATH=/srv/bonds/purchases.xlsx
//	BONDSCOPE_DATA_VALIDITY_DAYS=15
//	BONDSCOPE_COLUMNS_PURCHASES="Buyer:donor_name,Date:purchase_date,Value:amount"
//	BONDSCOPE_CACHE_MAX_ENTRIES=256
//
// The columns section is the declarative header mapping handed to the
// preprocessor. A YAML file that sets columns.purchases or
// columns.redemptions replaces that default map entirely:
//
//	data:
//	  purchases_path: bonds/purchases.xlsx
//	  redemptions_path: bonds/redemptions.xlsx
//	columns:
//	  redemptions:
//	    "Date of Encashment": encashment_date
//	    "Political Party": political_party
//	    "Denomination": amount
//
// Relative data paths in a YAML file resolve against the file's directory.
// The merged result is checked with validator struct tags; any failure is
// returned as a CONFIG AppError.
package config
