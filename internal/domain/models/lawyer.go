package models

// ServiceArea is a practice area a lawyer can list.
type ServiceArea string

const (
	AreaGeneralCorporateCommercial  ServiceArea = "General Corporate & Commercial"
	AreaMergersAcquisitions         ServiceArea = "Mergers & Acquisitions (M&A)"
	AreaPrivateEquityVentureCapital ServiceArea = "Private Equity & Venture Capital"
	AreaJointVentures               ServiceArea = "Joint Ventures & Strategic Alliances"
	AreaForeignInvestmentFEMA       ServiceArea = "Foreign Investment & FEMA"
	AreaLitigation                  ServiceArea = "Litigation (Civil, Criminal, Commercial)"
	AreaArbitrationMediation        ServiceArea = "Arbitration & Mediation"
	AreaWhiteCollarCrime            ServiceArea = "White Collar Crime & Investigations"
	AreaRegulatoryCompliance        ServiceArea = "Regulatory & Compliance (General)"
	AreaCompetitionAntitrust        ServiceArea = "Competition & Antitrust Law"
	AreaDataProtectionPrivacy       ServiceArea = "Data Protection & Privacy"
	AreaESG                         ServiceArea = "Environmental, Social & Governance (ESG)"
	AreaLabourEmployment            ServiceArea = "Labour & Employment Law"
	AreaInsolvencyBankruptcy        ServiceArea = "Insolvency, Bankruptcy & Restructuring"
	AreaBankingFinance              ServiceArea = "Banking & Finance (Regulatory & Transactional)"
	AreaInsurance                   ServiceArea = "Insurance Law (Regulatory & Claims)"
	AreaRealEstateConstruction      ServiceArea = "Real Estate & Construction Law"
	AreaTMT                         ServiceArea = "Technology, Media & Telecommunications (TMT)"
	AreaIntellectualProperty        ServiceArea = "Intellectual Property"
	AreaTaxation                    ServiceArea = "Taxation (Direct & Indirect/GST)"
	AreaFamilyPrivateClient         ServiceArea = "Family Law & Private Client (Wills, Trusts)"
	AreaHealthcarePharma            ServiceArea = "Healthcare, Pharmaceuticals & Life Sciences"
	AreaInfrastructureEnergy        ServiceArea = "Infrastructure, Projects & Energy"
	AreaMaritimeAviation            ServiceArea = "Maritime, Aviation & Logistics Law"
	AreaGovernmentPublicSector      ServiceArea = "Government & Public Sector Advisory"
	AreaStartupAdvisory             ServiceArea = "Startup Advisory & Legal Services"
	AreaVirtualGeneralCounsel       ServiceArea = "Virtual General Counsel Services"
	AreaLegalTech                   ServiceArea = "Legal Tech & AI Solutions"
	AreaCaseLawAnalysis             ServiceArea = "Case Law & Judgment Analysis"
	AreaCivilLaw                    ServiceArea = "Civil Law"
	AreaCriminalLaw                 ServiceArea = "Criminal Law"
	AreaFamilyLaw                   ServiceArea = "Family Law"
	AreaConsumerLaw                 ServiceArea = "Consumer Law"
	AreaCorporateLaw                ServiceArea = "Corporate Law"
	AreaCyberLaw                    ServiceArea = "Cyber Law"
	AreaLaborLaw                    ServiceArea = "Labor Law"
	AreaServiceLaw                  ServiceArea = "Service Law"
	AreaInsuranceLaw                ServiceArea = "Insurance Law"
	AreaBankingLaw                  ServiceArea = "Banking Law"
	AreaPropertyLaw                 ServiceArea = "Property Law"
	AreaConstitutionalLaw           ServiceArea = "Constitutional Law"
	AreaEnvironmentalLaw            ServiceArea = "Environmental Law"
	AreaAccidentLaw                 ServiceArea = "Accident Law"
	AreaMotorAccidentClaims         ServiceArea = "Motor Accident Claims"
)

// ServiceAreas lists every practice area in declaration order.
var ServiceAreas = []ServiceArea{
	AreaGeneralCorporateCommercial,
	AreaMergersAcquisitions,
	AreaPrivateEquityVentureCapital,
	AreaJointVentures,
	AreaForeignInvestmentFEMA,
	AreaLitigation,
	AreaArbitrationMediation,
	AreaWhiteCollarCrime,
	AreaRegulatoryCompliance,
	AreaCompetitionAntitrust,
	AreaDataProtectionPrivacy,
	AreaESG,
	AreaLabourEmployment,
	AreaInsolvencyBankruptcy,
	AreaBankingFinance,
	AreaInsurance,
	AreaRealEstateConstruction,
	AreaTMT,
	AreaIntellectualProperty,
	AreaTaxation,
	AreaFamilyPrivateClient,
	AreaHealthcarePharma,
	AreaInfrastructureEnergy,
	AreaMaritimeAviation,
	AreaGovernmentPublicSector,
	AreaStartupAdvisory,
	AreaVirtualGeneralCounsel,
	AreaLegalTech,
	AreaCaseLawAnalysis,
	AreaCivilLaw,
	AreaCriminalLaw,
	AreaFamilyLaw,
	AreaConsumerLaw,
	AreaCorporateLaw,
	AreaCyberLaw,
	AreaLaborLaw,
	AreaServiceLaw,
	AreaInsuranceLaw,
	AreaBankingLaw,
	AreaPropertyLaw,
	AreaConstitutionalLaw,
	AreaEnvironmentalLaw,
	AreaAccidentLaw,
	AreaMotorAccidentClaims,
}

// LawyerProfile is an entry in the lawyer directory.
type LawyerProfile struct {
	ID              string        `json:"id" yaml:"id"`
	Name            string        `json:"name" yaml:"name"`
	PracticeAreas   []ServiceArea `json:"practiceAreas" yaml:"practice_areas"`
	City            string        `json:"city" yaml:"city"`
	State           string        `json:"state" yaml:"state"`
	Email           string        `json:"email" yaml:"email"`
	Phone           string        `json:"phone" yaml:"phone"`
	Bio             string        `json:"bio" yaml:"bio"`
	ExperienceYears int           `json:"experienceYears" yaml:"experience_years"`
}

// HasArea reports whether the lawyer lists the given practice area.
func (l *LawyerProfile) HasArea(area ServiceArea) bool {
	for _, a := range l.PracticeAreas {
		if a == area {
			return true
		}
	}
	return false
}
