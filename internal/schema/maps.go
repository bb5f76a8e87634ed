package schema

import (
	"maps"
	"slices"
)

// TypeMap maps a DBF field type to a column type.
type TypeMap map[byte]ColumnType

// DefaultTypeMap covers every field type found in the archive.
func DefaultTypeMap() TypeMap {
	return TypeMap{
		'C': Text,
		'M': Text,
		'D': Date,
		'T': Timestamp,
		'N': Real,
		'F': Real,
		'B': Real,
		'Y': Real,
		'I': Integer,
		'L': Boolean,
		'0': Blob,
	}
}

// Files maps a table name to the base name of its per-year data file.
type Files map[string]string

// DefaultFiles lists the tables of the FERC Form 1 archive.
func DefaultFiles() Files {
	return Files{
		"f1_respondent_id":       "F1_1",
		"f1_acb_epda":            "F1_2",
		"f1_accumdepr_prvsn":     "F1_3",
		"f1_accumdfrrdtaxcr":     "F1_4",
		"f1_adit_190_detail":     "F1_5",
		"f1_adit_190_notes":      "F1_6",
		"f1_adit_amrt_prop":      "F1_7",
		"f1_adit_other":          "F1_8",
		"f1_adit_other_prop":     "F1_9",
		"f1_allowances":          "F1_10",
		"f1_bal_sheet_cr":        "F1_11",
		"f1_capital_stock":       "F1_12",
		"f1_cash_flow":           "F1_13",
		"f1_cmmn_utlty_p_e":      "F1_14",
		"f1_comp_balance_db":     "F1_15",
		"f1_construction":        "F1_16",
		"f1_control_respdnt":     "F1_17",
		"f1_co_directors":        "F1_18",
		"f1_cptl_stk_expns":      "F1_19",
		"f1_csscslc_pcsircs":     "F1_20",
		"f1_dacs_epda":           "F1_21",
		"f1_dscnt_cptl_stk":      "F1_22",
		"f1_edcfu_epda":          "F1_23",
		"f1_elctrc_erg_acct":     "F1_24",
		"f1_elctrc_oper_rev":     "F1_25",
		"f1_elc_oper_rev_nb":     "F1_26",
		"f1_elc_op_mnt_expn":     "F1_27",
		"f1_electric":            "F1_28",
		"f1_envrnmntl_expns":     "F1_29",
		"f1_envrnmntl_fclty":     "F1_30",
		"f1_fuel":                "F1_31",
		"f1_general_info":        "F1_32",
		"f1_gnrt_plant":          "F1_33",
		"f1_important_chg":       "F1_34",
		"f1_incm_stmnt_2":        "F1_35",
		"f1_income_stmnt":        "F1_36",
		"f1_miscgen_expnelc":     "F1_37",
		"f1_misc_dfrrd_dr":       "F1_38",
		"f1_mthly_peak_otpt":     "F1_39",
		"f1_mtrl_spply":          "F1_40",
		"f1_nbr_elc_deptemp":     "F1_41",
		"f1_nonutility_prop":     "F1_42",
		"f1_note_fin_stmnt":      "F1_43",
		"f1_nuclear_fuel":        "F1_44",
		"f1_officers_co":         "F1_45",
		"f1_othr_dfrrd_cr":       "F1_46",
		"f1_othr_pd_in_cptl":     "F1_47",
		"f1_othr_reg_assets":     "F1_48",
		"f1_othr_reg_liab":       "F1_49",
		"f1_overhead":            "F1_50",
		"f1_pccidica":            "F1_51",
		"f1_plant_in_srvce":      "F1_52",
		"f1_pumped_storage":      "F1_53",
		"f1_purchased_pwr":       "F1_54",
		"f1_reconrpt_netinc":     "F1_55",
		"f1_reg_comm_expn":       "F1_56",
		"f1_respdnt_control":     "F1_57",
		"f1_retained_erng":       "F1_58",
		"f1_r_d_demo_actvty":     "F1_59",
		"f1_sales_by_sched":      "F1_60",
		"f1_sale_for_resale":     "F1_61",
		"f1_sbsdry_totals":       "F1_62",
		"f1_schedules_list":      "F1_63",
		"f1_security_holder":     "F1_64",
		"f1_slry_wg_dstrbtn":     "F1_65",
		"f1_substations":         "F1_66",
		"f1_taxacc_ppchrgyr":     "F1_67",
		"f1_unrcvrd_cost":        "F1_68",
		"f1_utltyplnt_smmry":     "F1_69",
		"f1_work":                "F1_70",
		"f1_xmssn_adds":          "F1_71",
		"f1_xmssn_elc_bothr":     "F1_72",
		"f1_xmssn_elc_fothr":     "F1_73",
		"f1_xmssn_line":          "F1_74",
		"f1_xtraordnry_loss":     "F1_75",
		"f1_hydro":               "F1_86",
		"f1_steam":               "F1_89",
		"f1_leased":              "F1_90",
		"f1_sbsdry_detail":       "F1_91",
		"f1_plant":               "F1_92",
		"f1_long_term_debt":      "F1_93",
		"f1_106_2009":            "F1_106_2009",
		"f1_106a_2009":           "F1_106A_2009",
		"f1_106b_2009":           "F1_106B_2009",
		"f1_208_elc_dep":         "F1_208_ELC_DEP",
		"f1_231_trn_stdycst":     "F1_231_TRN_STDYCST",
		"f1_324_elc_expns":       "F1_324_ELC_EXPNS",
		"f1_325_elc_cust":        "F1_325_ELC_CUST",
		"f1_331_transiso":        "F1_331_TRANSISO",
		"f1_338_dep_depl":        "F1_338_DEP_DEPL",
		"f1_397_isorto_stl":      "F1_397_ISORTO_STL",
		"f1_398_ancl_ps":         "F1_398_ANCL_PS",
		"f1_399_mth_peak":        "F1_399_MTH_PEAK",
		"f1_400_sys_peak":        "F1_400_SYS_PEAK",
		"f1_400a_iso_peak":       "F1_400A_ISO_PEAK",
		"f1_429_trans_aff":       "F1_429_TRANS_AFF",
		"f1_allowances_nox":      "F1_ALLOWANCES_NOX",
		"f1_cmpinc_hedge_a":      "F1_CMPINC_HEDGE_A",
		"f1_cmpinc_hedge":        "F1_CMPINC_HEDGE",
		"f1_email":               "F1_EMAIL",
		"f1_rg_trn_srv_rev":      "F1_RG_TRN_SRV_REV",
		"f1_s0_checks":           "F1_S0_CHECKS",
		"f1_s0_filing_log":       "F1_S0_FILING_LOG",
		"f1_security":            "F1_SECURITY",
	}
}

// Tables returns the table names, sorted.
func (f Files) Tables() []string {
	return slices.Sorted(maps.Keys(f))
}
