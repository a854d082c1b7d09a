package chat

// User-facing texts. The bot speaks Thai.
const (
	msgGenericError      = "ขออภัย เกิดข้อผิดพลาดในการประมวลผล กรุณาลองใหม่อีกครั้ง"
	msgTodoAddUsage      = "วิธีใช้: /todo add <ข้อความ>"
	msgTodoListUsage     = "วิธีใช้: /todo list [จำนวน]"
	msgImageUsage        = "วิธีใช้: /image <คำอธิบายภาพที่ต้องการ>"
	msgTodoEmpty         = "ยังไม่มีรายการสิ่งที่ต้องทำ"
	msgTodoAdded         = "เพิ่มรายการแล้ว: "
	msgTodoListHeader    = "รายการสิ่งที่ต้องทำ:"
	msgLiffNotConfigured = "ยังไม่ได้ตั้งค่า LIFF ID"
	msgNotConfigured     = "ยังไม่ได้ตั้งค่าส่วนนี้ กรุณาติดต่อผู้ดูแลระบบ"
	msgItemNotFound      = "ไม่พบรายการนี้"
	msgChatUnavailable   = "ยังไม่ได้เชื่อมต่อโมเดล AI"
	msgSummaryUsage      = "วิธีใช้: /sheet summary <เดือน-ปี> เช่น /sheet summary 8-2026"
	msgNoResults         = "ไม่พบข้อมูล"
)
