package models

import "time"

// Address почтовый адрес центра
type Address struct {
	Line1    string `json:"line1"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
}

// Center представляет тенанта: изолированную единицу со своим namespace и ключевой парой.
// PublicKey - base64 DER RSA публичного ключа, единственный якорь аутентификации.
type Center struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"`
	Owner     string    `json:"owner"`
	Address   Address   `json:"address"`
}

// InstanceRole роль локального экземпляра
type InstanceRole string

const (
	// RoleMaster экземпляр, который выгружает outbox в центр
	RoleMaster InstanceRole = "master"
	// RoleSlave пассивный экземпляр
	RoleSlave InstanceRole = "slave"
)

// IsMaster возвращает true только для master экземпляра
func (r InstanceRole) IsMaster() bool {
	return r == RoleMaster
}
