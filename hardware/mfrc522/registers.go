package mfrc522

// MFRC522 register map, I2C addressing (not shifted like SPI).
const (
	CommandReg    byte = 0x01
	ComIEnReg     byte = 0x02
	DivIEnReg     byte = 0x03
	ComIrqReg     byte = 0x04
	DivIrqReg     byte = 0x05
	ErrorReg      byte = 0x06
	Status1Reg    byte = 0x07
	Status2Reg    byte = 0x08
	FIFODataReg   byte = 0x09
	FIFOLevelReg  byte = 0x0a
	WaterLevelReg byte = 0x0b
	ControlReg    byte = 0x0c
	BitFramingReg byte = 0x0d
	CollReg       byte = 0x0e
	ModeReg       byte = 0x11
	TxModeReg     byte = 0x12
	RxModeReg     byte = 0x13
	TxControlReg  byte = 0x14
	TxASKReg      byte = 0x15
	ModWidthReg   byte = 0x24
	RFCfgReg      byte = 0x26
	TModeReg      byte = 0x2a
	TPrescalerReg byte = 0x2b
	TReloadRegH   byte = 0x2c
	TReloadRegL   byte = 0x2d
	VersionReg    byte = 0x37
)

// PCD commands
const (
	PCD_Idle       byte = 0x00
	PCD_Transceive byte = 0x0c
	PCD_SoftReset  byte = 0x0f
)

// PICC commands, ISO/IEC 14443-3
const (
	PICC_REQA    byte = 0x26
	PICC_SEL_CL1 byte = 0x93
	PICC_SEL_CL2 byte = 0x95
	PICC_SEL_CL3 byte = 0x97
	PICC_HLTA    byte = 0x50
	PICC_CT      byte = 0x88 // cascade tag
)

// register bits
const (
	bitPowerDown  byte = 0x10 // CommandReg
	bitStartSend  byte = 0x80 // BitFramingReg
	bitFlushFIFO  byte = 0x80 // FIFOLevelReg
	bitValuesColl byte = 0x80 // CollReg
	bitMFCrypto1  byte = 0x08 // Status2Reg
	bitTimerIRq   byte = 0x01 // ComIrqReg
	bitIdleIRq    byte = 0x10
	bitRxIRq      byte = 0x20
	bitAntenna    byte = 0x03 // TxControlReg Tx1RFEn|Tx2RFEn
	bitCascade    byte = 0x04 // SAK
	errCollision  byte = 0x08 // ErrorReg CollErr
	errFatalMask  byte = 0x13 // ErrorReg BufferOvfl|ParityErr|ProtocolErr
)
